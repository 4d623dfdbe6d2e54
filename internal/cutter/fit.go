package cutter

// Fit returns the largest rectangle of the given ratio centered in a canvas of
// size bounds. An empty canvas yields the zero Rect.
func Fit(bounds Size, ratio Ratio) Rect {
	if bounds.Empty() {
		return Rect{}
	}
	if ratio.narrowerThan(bounds.Width, bounds.Height) {
		w := min(ratio.widthFor(bounds.Height), bounds.Width)
		return Rect{
			Top:    0,
			Left:   (bounds.Width - w) / 2,
			Width:  w,
			Height: bounds.Height,
		}
	}
	h := min(ratio.heightFor(bounds.Width), bounds.Height)
	return Rect{
		Top:    (bounds.Height - h) / 2,
		Left:   0,
		Width:  bounds.Width,
		Height: h,
	}
}

package cutter

// Resize drags handle h of r by (dx, dy) and returns the new selection.
//
// Edges not adjacent to h stay where they are. The moving edges shift by the
// floored delta, clamped to the canvas and to a minimum size of one pixel.
// The provisional rectangle is then brought back to the target ratio:
//
//   - corner handles fit by height when the provisional rectangle is wider than
//     the ratio and by width otherwise;
//   - edge handles take the dragged dimension as given and derive the other one,
//     growing away from the pinned top or left edge. When the derived side would
//     leave the canvas it is clamped and the dragged side is derived back from it.
//
// A delta whose magnitude exceeds the current span on its axis is ignored and
// r is returned unchanged, so one step can neither invert the selection nor
// more than double it. Handles that are not resize handles return r as is.
func Resize(r Rect, bounds Size, ratio Ratio, h Handle, dx, dy float64) Rect {
	if !h.IsResize() {
		return r
	}

	var sx, sy int
	if h.horizontal() {
		sx = floorDelta(dx)
	}
	if h.vertical() {
		sy = floorDelta(dy)
	}
	if inverts(r, h, sx, sy) {
		return r
	}

	left, top, right, bottom := r.Left, r.Top, r.Right(), r.Bottom()
	switch {
	case h.has(Left):
		left = clamp(left+sx, 0, right-1)
	case h.has(Right):
		right = clamp(right+sx, left+1, bounds.Width)
	}
	switch {
	case h.has(Top):
		top = clamp(top+sy, 0, bottom-1)
	case h.has(Bottom):
		bottom = clamp(bottom+sy, top+1, bounds.Height)
	}

	w, ht := right-left, bottom-top
	switch {
	case h.IsCorner():
		if ratio.narrowerThan(w, ht) {
			w = ratio.widthFor(ht)
		} else {
			ht = ratio.heightFor(w)
		}
	case h.horizontal():
		ht = ratio.heightFor(w)
		if top+ht > bounds.Height {
			ht = max(bounds.Height-top, 1)
			w = ratio.widthFor(ht)
		}
	default:
		w = ratio.widthFor(ht)
		if left+w > bounds.Width {
			w = max(bounds.Width-left, 1)
			ht = ratio.heightFor(w)
		}
	}

	out := Rect{Top: top, Left: left, Width: w, Height: ht}
	if h.has(Left) {
		out.Left = right - w
	}
	if h.has(Top) {
		out.Top = bottom - ht
	}
	return out
}

// inverts reports whether the delta on an axis with a moving edge is larger
// than the current span on that axis, in either direction.
func inverts(r Rect, h Handle, sx, sy int) bool {
	if h.horizontal() && abs(sx) > r.Width {
		return true
	}
	if h.vertical() && abs(sy) > r.Height {
		return true
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

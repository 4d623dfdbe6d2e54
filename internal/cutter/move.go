package cutter

// Translate shifts r by the floored delta. Each axis is clamped independently
// so that an overshooting drag leaves r flush against the canvas edge.
func Translate(r Rect, bounds Size, dx, dy float64) Rect {
	r.Left = clamp(r.Left+floorDelta(dx), 0, max(bounds.Width-r.Width, 0))
	r.Top = clamp(r.Top+floorDelta(dy), 0, max(bounds.Height-r.Height, 0))
	return r
}

package cutter

// HitRadius is the distance in canvas pixels within which a pointer grabs a handle.
const HitRadius = 20

// Classify returns the handle under p for the selection r, or None.
//
// Corners are tested first, in the order top-left, top-right, bottom-right,
// bottom-left, so they are never shadowed by the larger edge zones. Edges are
// tested next in the order top, bottom, left, right; each edge zone spans the
// edge extended by HitRadius on both ends.
func Classify(p Point, r Rect) Handle {
	const rad = float64(HitRadius)
	left, right := float64(r.Left), float64(r.Right())
	top, bottom := float64(r.Top), float64(r.Bottom())

	corners := [...]struct {
		x, y float64
		h    Handle
	}{
		{left, top, TopLeft},
		{right, top, TopRight},
		{right, bottom, BottomRight},
		{left, bottom, BottomLeft},
	}
	for _, c := range corners {
		dx, dy := c.x-p.X, c.y-p.Y
		if dx*dx+dy*dy <= rad*rad {
			return c.h
		}
	}

	near := func(v, edge float64) bool {
		return edge-rad <= v && v <= edge+rad
	}
	if left-rad <= p.X && p.X <= right+rad {
		if near(p.Y, top) {
			return Top
		}
		if near(p.Y, bottom) {
			return Bottom
		}
	}
	if top-rad <= p.Y && p.Y <= bottom+rad {
		if near(p.X, left) {
			return Left
		}
		if near(p.X, right) {
			return Right
		}
	}
	return None
}

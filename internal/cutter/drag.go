package cutter

// Controller tracks a single pointer drag over the selection. It is idle until
// Down lands on a handle or inside the selection, and active until Up or Leave.
//
// Down, Move, Up and Leave are the pointer transitions.
// A Controller is not safe for concurrent use.
type Controller struct {
	bounds Size
	ratio  Ratio
	rect   Rect

	active bool
	anchor Point
	mode   Handle
}

// NewController returns an idle controller for the given ratio. The selection
// stays zero until Reset is called with the canvas size.
func NewController(ratio Ratio) *Controller {
	return &Controller{ratio: ratio}
}

// Reset ends any drag, stores the canvas size and fits a fresh selection.
func (c *Controller) Reset(bounds Size) Rect {
	c.release()
	c.bounds = bounds
	c.rect = Fit(bounds, c.ratio)
	return c.rect
}

// SetRatio changes the target ratio and refits the selection.
func (c *Controller) SetRatio(ratio Ratio) Rect {
	c.ratio = ratio
	return c.Reset(c.bounds)
}

// SetRect replaces the selection. It reports false and leaves the selection
// untouched when r does not lie within the canvas or does not have the
// target ratio.
func (c *Controller) SetRect(r Rect) bool {
	if !r.In(c.bounds) || !c.ratio.Matches(r) {
		return false
	}
	c.rect = r
	return true
}

func (c *Controller) Rect() Rect {
	return c.rect
}

func (c *Controller) Bounds() Size {
	return c.bounds
}

func (c *Controller) Ratio() Ratio {
	return c.ratio
}

// Active reports whether a drag is in progress.
func (c *Controller) Active() bool {
	return c.active
}

// Mode returns the handle being dragged, None while idle.
func (c *Controller) Mode() Handle {
	return c.mode
}

// Down starts a drag at p. Handles take precedence over the interior. It
// returns the drag mode, None when p misses the selection.
func (c *Controller) Down(p Point) Handle {
	c.release()
	if c.bounds.Empty() {
		return None
	}
	mode := Classify(p, c.rect)
	if mode == None && c.rect.Contains(p) {
		mode = Move
	}
	if mode == None {
		return None
	}
	c.active, c.anchor, c.mode = true, p, mode
	return mode
}

// Move applies the motion from the previous pointer position to p and makes p
// the new anchor. It reports whether a drag was active.
func (c *Controller) Move(p Point) (Rect, bool) {
	if !c.active {
		return c.rect, false
	}
	d := p.Sub(c.anchor)
	if c.mode == Move {
		c.rect = Translate(c.rect, c.bounds, d.X, d.Y)
	} else {
		c.rect = Resize(c.rect, c.bounds, c.ratio, c.mode, d.X, d.Y)
	}
	c.anchor = p
	return c.rect, true
}

// Up ends the drag. Geometry applied during the drag is kept.
func (c *Controller) Up() {
	c.release()
}

// Leave ends the drag when the pointer leaves the canvas.
func (c *Controller) Leave() {
	c.release()
}

func (c *Controller) release() {
	c.active, c.anchor, c.mode = false, Point{}, None
}

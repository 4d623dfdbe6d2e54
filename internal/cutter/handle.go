package cutter

import (
	"encoding/json"
	"fmt"
)

// Handle identifies what a drag acts on. Edge handles are single bits and a
// corner is the union of its two adjacent edges, so a Handle is also the set
// of rectangle edges that move while it is dragged.
type Handle uint8

const (
	None Handle = 0

	Top    Handle = 1 << 0
	Right  Handle = 1 << 1
	Bottom Handle = 1 << 2
	Left   Handle = 1 << 3

	TopLeft     = Top | Left
	TopRight    = Top | Right
	BottomRight = Bottom | Right
	BottomLeft  = Bottom | Left

	Move Handle = 1 << 4
)

var handleNames = map[Handle]string{
	None:        "none",
	Top:         "top",
	Right:       "right",
	Bottom:      "bottom",
	Left:        "left",
	TopLeft:     "top-left",
	TopRight:    "top-right",
	BottomRight: "bottom-right",
	BottomLeft:  "bottom-left",
	Move:        "move",
}

func (h Handle) String() string {
	if name, ok := handleNames[h]; ok {
		return name
	}
	return fmt.Sprintf("handle(%d)", uint8(h))
}

func (h Handle) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// IsResize reports whether h is one of the eight resize handles.
func (h Handle) IsResize() bool {
	switch h {
	case Top, Right, Bottom, Left, TopLeft, TopRight, BottomRight, BottomLeft:
		return true
	}
	return false
}

// IsCorner reports whether h moves one horizontal and one vertical edge.
func (h Handle) IsCorner() bool {
	return h.IsResize() && h.horizontal() && h.vertical()
}

// horizontal reports whether h moves the left or right edge.
func (h Handle) horizontal() bool {
	return h&(Left|Right) != 0
}

// vertical reports whether h moves the top or bottom edge.
func (h Handle) vertical() bool {
	return h&(Top|Bottom) != 0
}

func (h Handle) has(edge Handle) bool {
	return h&edge == edge
}

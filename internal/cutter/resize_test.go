package cutter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResize(t *testing.T) {
	square := NewRatio(1, 1)
	start := Rect{Top: 50, Left: 50, Width: 100, Height: 100}

	tests := []struct {
		name   string
		bounds Size
		h      Handle
		dx, dy float64
		want   Rect
	}{
		{"bottom-right wider fits height", Size{200, 200}, BottomRight, 20, 10, Rect{50, 50, 110, 110}},
		{"bottom-right taller fits width", Size{200, 200}, BottomRight, 10, 30, Rect{50, 50, 110, 110}},
		{"bottom-right clamped to canvas", Size{200, 200}, BottomRight, 100, 100, Rect{50, 50, 150, 150}},
		{"top-left pins bottom-right", Size{200, 200}, TopLeft, -20, -10, Rect{40, 40, 110, 110}},
		{"top-left clamped to origin", Size{200, 200}, TopLeft, -100, -100, Rect{0, 0, 150, 150}},
		{"top-right pins bottom-left", Size{200, 200}, TopRight, 10, -30, Rect{40, 50, 110, 110}},
		{"bottom-left pins top-right", Size{200, 200}, BottomLeft, -30, 10, Rect{50, 40, 110, 110}},
		{"right edge grows down", Size{200, 200}, Right, 20, 99, Rect{50, 50, 120, 120}},
		{"right edge reclamped by height", Size{200, 160}, Right, 20, 0, Rect{50, 50, 110, 110}},
		{"left edge pins right", Size{200, 200}, Left, -20, 0, Rect{50, 30, 120, 120}},
		{"left edge reclamped by height", Size{200, 160}, Left, -20, 0, Rect{50, 40, 110, 110}},
		{"top edge pins bottom", Size{200, 200}, Top, 0, -20, Rect{30, 50, 120, 120}},
		{"top edge reclamped by width", Size{160, 200}, Top, 0, -20, Rect{40, 50, 110, 110}},
		{"bottom edge reclamped by width", Size{160, 200}, Bottom, 0, 20, Rect{50, 50, 110, 110}},
		{"bottom edge shrinks", Size{200, 200}, Bottom, 0, -40, Rect{50, 50, 60, 60}},
		{"negative fraction floors away from zero", Size{200, 200}, Right, -0.5, 0, Rect{50, 50, 99, 99}},
		{"positive fraction floors to zero", Size{200, 200}, Right, 0.9, 0, Rect{50, 50, 100, 100}},
		{"shrink to one pixel", Size{200, 200}, Left, 100, 0, Rect{50, 149, 1, 1}},
		{"left past right edge ignored", Size{200, 200}, Left, 101, 0, start},
		{"top past bottom edge ignored", Size{200, 200}, Top, 0, 101, start},
		{"outward right beyond span ignored", Size{300, 300}, Right, 101, 0, start},
		{"outward top-left beyond span ignored", Size{200, 200}, TopLeft, -20, -101, start},
		{"outward by exactly the span", Size{300, 300}, BottomRight, 100, 100, Rect{50, 50, 200, 200}},
		{"move is not a resize", Size{200, 200}, Move, 10, 10, start},
		{"none is not a resize", Size{200, 200}, None, 10, 10, start},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resize(start, tt.bounds, square, tt.h, tt.dx, tt.dy)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.In(tt.bounds), "%v outside %v", got, tt.bounds)
		})
	}
}

func TestResizeWideRatio(t *testing.T) {
	r := Rect{Top: 0, Left: 0, Width: 200, Height: 100}
	got := Resize(r, Size{400, 300}, NewRatio(2, 1), BottomRight, 50, 50)
	assert.Equal(t, Rect{Top: 0, Left: 0, Width: 250, Height: 125}, got)
}

func TestResizeRejectsInversion(t *testing.T) {
	r := Rect{Top: 0, Left: 0, Width: 100, Height: 100}
	got := Resize(r, Size{200, 100}, NewRatio(1, 1), BottomRight, -150, 0)
	assert.Equal(t, r, got)
}

func TestResizeRightEdgeAvailableHeight(t *testing.T) {
	r := Rect{Top: 10, Left: 10, Width: 50, Height: 50}
	square := NewRatio(1, 1)

	got := Resize(r, Size{200, 200}, square, Right, 20, 0)
	assert.Equal(t, Rect{Top: 10, Left: 10, Width: 70, Height: 70}, got)

	got = Resize(r, Size{200, 60}, square, Right, 20, 0)
	assert.Equal(t, Rect{Top: 10, Left: 10, Width: 50, Height: 50}, got)
}

package cutter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	r := Rect{Top: 100, Left: 100, Width: 100, Height: 100}

	tests := []struct {
		name string
		p    Point
		want Handle
	}{
		{"top-left corner", Point{100, 100}, TopLeft},
		{"near top-left", Point{105, 95}, TopLeft},
		{"top-right corner", Point{200, 100}, TopRight},
		{"bottom-right corner", Point{210, 210}, BottomRight},
		{"bottom-left corner", Point{100, 200}, BottomLeft},
		{"top edge", Point{150, 100}, Top},
		{"top edge inside radius", Point{150, 115}, Top},
		{"bottom edge", Point{150, 200}, Bottom},
		{"left edge", Point{100, 150}, Left},
		{"right edge", Point{219, 150}, Right},
		{"corner beats edges", Point{115, 112}, TopLeft},
		{"top beats left outside corner radius", Point{81, 112}, Top},
		{"interior", Point{150, 150}, None},
		{"just past top zone", Point{150, 121}, None},
		{"far away", Point{0, 0}, None},
		{"beyond edge span", Point{150, 230}, None},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.p, r))
		})
	}
}

func TestClassifyCornerOrder(t *testing.T) {
	// all four corners of a tiny rect are within reach of its center
	r := Rect{Top: 0, Left: 0, Width: 10, Height: 10}
	assert.Equal(t, TopLeft, Classify(Point{5, 5}, r))
	assert.Equal(t, TopRight, Classify(Point{25, -5}, r))
}

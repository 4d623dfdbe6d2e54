// Package cutter implements the geometry behind an aspect-locked crop selection:
// hit testing of the eight handles, resizing and moving under canvas bounds, fitting
// the initial selection and a pointer-driven drag controller.
//
// All functions take values and return new values. Coordinates are canvas pixels.
package cutter

import (
	"fmt"
	"image"
	"math"
)

// Point is a pointer position in canvas pixel space. It is fractional because
// callers convert from display coordinates using the display scale.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Size holds the integer dimensions of the canvas.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// SizeOf returns the dimensions of an image.Rectangle.
func SizeOf(r image.Rectangle) Size {
	return Size{Width: r.Dx(), Height: r.Dy()}
}

// Ratio is the target aspect ratio, kept as the configured output dimensions so
// that derived sides can be computed with integer floor division.
type Ratio struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NewRatio returns the ratio of width to height. Both must be positive.
func NewRatio(width, height int) Ratio {
	return Ratio{Width: width, Height: height}
}

// narrowerThan reports whether a is strictly narrower than w:h.
func (a Ratio) narrowerThan(w, h int) bool {
	return a.Width*h < w*a.Height
}

// heightFor returns floor(a.Height * w / a.Width), at least 1.
func (a Ratio) heightFor(w int) int {
	return max(a.Height*w/a.Width, 1)
}

// widthFor returns floor(a.Width * h / a.Height), at least 1.
func (a Ratio) widthFor(h int) int {
	return max(a.Width*h/a.Height, 1)
}

// Equal reports whether a and b describe the same proportion, so 128:128
// equals 256:256.
func (a Ratio) Equal(b Ratio) bool {
	return a.Width*b.Height == b.Width*a.Height
}

// Matches reports whether r has ratio a up to a single floor of the side
// derived from the other one.
func (a Ratio) Matches(r Rect) bool {
	byWidth := a.Height*r.Width - a.Width*r.Height
	byHeight := a.Width*r.Height - a.Height*r.Width
	return (byWidth >= 0 && byWidth < a.Width) || (byHeight >= 0 && byHeight < a.Height)
}

func (a Ratio) String() string {
	return fmt.Sprintf("%d:%d", a.Width, a.Height)
}

// Rect is the crop selection. All fields are integers.
type Rect struct {
	Top    int `json:"top"`
	Left   int `json:"left"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r Rect) Right() int {
	return r.Left + r.Width
}

func (r Rect) Bottom() int {
	return r.Top + r.Height
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return float64(r.Left) <= p.X && p.X <= float64(r.Right()) &&
		float64(r.Top) <= p.Y && p.Y <= float64(r.Bottom())
}

// In reports whether r is non-degenerate and lies within a canvas of size s.
func (r Rect) In(s Size) bool {
	return r.Left >= 0 && r.Top >= 0 && r.Width >= 1 && r.Height >= 1 &&
		r.Right() <= s.Width && r.Bottom() <= s.Height
}

// Image converts r to an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Right(), r.Bottom())
}

func (r Rect) String() string {
	return fmt.Sprintf("rect(top=%d,left=%d,w=%d,h=%d)", r.Top, r.Left, r.Width, r.Height)
}

// floorDelta floors a pointer delta to whole pixels. Negative deltas round
// toward negative infinity.
func floorDelta(d float64) int {
	return int(math.Floor(d))
}

package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"imagecutter/internal/cutter"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
)

var (
	ErrNoImage             = errors.New("no image loaded")
	ErrInvalidRect         = errors.New("rect outside canvas or off the target ratio")
	ErrUnknownPointerEvent = errors.New("unknown pointer event")
)

// DropEvent is emitted once a dropped file decoded successfully, before the
// selection is reset for the new canvas.
type DropEvent struct {
	Name  string
	Image image.Image
}

// Pointer event types accepted by Editor.Apply.
const (
	PointerDown  = "down"
	PointerMove  = "move"
	PointerUp    = "up"
	PointerLeave = "leave"
)

// PointerEvent is a pointer position already converted to canvas pixels.
type PointerEvent struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

func (e PointerEvent) Point() cutter.Point {
	return cutter.Point{X: e.X, Y: e.Y}
}

// Editor is a single editing session: a source image, the selection over it
// and the export settings. It is not safe for concurrent use.
type Editor struct {
	// OnChange is called with the selection whenever it changes.
	OnChange func(cutter.Rect)
	// OnDrop is called after Drop decoded an image.
	OnDrop func(DropEvent)

	settings Settings
	ctrl     *cutter.Controller
	src      image.Image
}

func NewEditor(settings Settings) *Editor {
	settings = settings.WithDefaults()
	return &Editor{
		settings: settings,
		ctrl:     cutter.NewController(settings.Ratio()),
	}
}

// Drop decodes an image from r and starts editing it. A nil reader is ignored.
func (e *Editor) Drop(ctx context.Context, name string, r io.Reader) error {
	if r == nil {
		return nil
	}
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("failed to decode image %s: %w", name, err)
	}
	log.Ctx(ctx).Debug().
		Str("filename", name).
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Msg("image dropped")

	if fn := e.OnDrop; fn != nil {
		fn(DropEvent{Name: name, Image: img})
	}
	e.Load(img)
	return nil
}

// Load replaces the source image and fits a new selection.
func (e *Editor) Load(img image.Image) {
	e.src = img
	e.Reset()
}

// Reset fits the largest selection of the target ratio centered on the canvas.
func (e *Editor) Reset() cutter.Rect {
	if e.src == nil {
		return cutter.Rect{}
	}
	rect := e.ctrl.Reset(cutter.SizeOf(e.src.Bounds()))
	e.publish(rect)
	return rect
}

func (e *Editor) Settings() Settings {
	return e.settings
}

// SetSettings applies new export settings. Only a different proportion refits
// the selection; 128x128 to 256x256 keeps it.
func (e *Editor) SetSettings(s Settings) {
	s = s.WithDefaults()
	changed := !s.Ratio().Equal(e.settings.Ratio())
	e.settings = s
	if !changed {
		return
	}
	rect := e.ctrl.SetRatio(s.Ratio())
	if e.src != nil {
		e.publish(rect)
	}
}

func (e *Editor) Rect() cutter.Rect {
	return e.ctrl.Rect()
}

// SetRect replaces the selection. r must lie within the canvas and have the
// target ratio.
func (e *Editor) SetRect(r cutter.Rect) error {
	if !e.ctrl.SetRect(r) {
		return fmt.Errorf("%w: %v in %dx%d at %v", ErrInvalidRect, r, e.Canvas().Width, e.Canvas().Height, e.settings.Ratio())
	}
	e.publish(r)
	return nil
}

func (e *Editor) Canvas() cutter.Size {
	return e.ctrl.Bounds()
}

func (e *Editor) Image() image.Image {
	return e.src
}

// Mode returns the handle of the drag in progress.
func (e *Editor) Mode() cutter.Handle {
	return e.ctrl.Mode()
}

func (e *Editor) Dragging() bool {
	return e.ctrl.Active()
}

func (e *Editor) PointerDown(p cutter.Point) cutter.Handle {
	return e.ctrl.Down(p)
}

func (e *Editor) PointerMove(p cutter.Point) {
	if rect, ok := e.ctrl.Move(p); ok {
		e.publish(rect)
	}
}

func (e *Editor) PointerUp() {
	e.ctrl.Up()
}

func (e *Editor) PointerLeave() {
	e.ctrl.Leave()
}

// Apply dispatches a pointer event by type.
func (e *Editor) Apply(ev PointerEvent) error {
	switch ev.Type {
	case PointerDown:
		e.PointerDown(ev.Point())
	case PointerMove:
		e.PointerMove(ev.Point())
	case PointerUp:
		e.PointerUp()
	case PointerLeave:
		e.PointerLeave()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPointerEvent, ev.Type)
	}
	return nil
}

// Extract returns the selection resampled to the configured output size.
func (e *Editor) Extract() (image.Image, error) {
	if e.src == nil {
		return nil, ErrNoImage
	}
	s := e.settings
	return Extract(e.src, e.Rect(), s.OutputWidth, s.OutputHeight, s.Pixelated), nil
}

func (e *Editor) Encode(w io.Writer, f Format) error {
	img, err := e.Extract()
	if err != nil {
		return err
	}
	return Encode(w, img, f, e.settings.Quality)
}

func (e *Editor) DataURL(f Format) (string, error) {
	img, err := e.Extract()
	if err != nil {
		return "", err
	}
	return DataURL(img, f, e.settings.Quality)
}

// Overlay renders the source with everything outside the selection dimmed,
// encoded as PNG.
func (e *Editor) Overlay(w io.Writer) error {
	if e.src == nil {
		return ErrNoImage
	}
	return Encode(w, Overlay(e.src, e.Rect()), FormatPNG, e.settings.Quality)
}

func (e *Editor) publish(rect cutter.Rect) {
	if fn := e.OnChange; fn != nil {
		fn(rect)
	}
}

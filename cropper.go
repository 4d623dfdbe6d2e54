package main

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"

	"imagecutter/internal/cutter"

	"github.com/HugoSmits86/nativewebp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

var ErrUnknownFormat = errors.New("unknown image format")

// Format is an export encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatGIF  Format = "gif"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
	FormatWebP Format = "webp"
)

// ParseFormat accepts a format name, a file extension or a MIME type.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, ".")
	s = strings.TrimPrefix(s, "image/")
	switch s {
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "gif":
		return FormatGIF, nil
	case "bmp":
		return FormatBMP, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	case "webp":
		return FormatWebP, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) MIME() string {
	return "image/" + string(f)
}

func (f Format) Ext() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return string(f)
}

// Extract samples the r region of src and resamples it to width x height.
// Nearest neighbor is used when pixelated is set, Lanczos otherwise.
func Extract(src image.Image, r cutter.Rect, width, height int, pixelated bool) *image.NRGBA {
	region := imaging.Crop(src, r.Image().Add(src.Bounds().Min))

	filter := imaging.Lanczos
	if pixelated {
		filter = imaging.NearestNeighbor
	}
	return imaging.Resize(region, width, height, filter)
}

// Overlay draws src with everything outside r dimmed by half-opaque black.
func Overlay(src image.Image, r cutter.Rect) *image.NRGBA {
	b := src.Bounds()
	shade := imaging.New(b.Dx(), b.Dy(), color.Black)
	dimmed := imaging.Overlay(imaging.Clone(src), shade, image.Point{}, 0.5)
	if r.Width <= 0 || r.Height <= 0 {
		return dimmed
	}
	cut := imaging.Crop(src, r.Image().Add(b.Min))
	return imaging.Paste(dimmed, cut, image.Pt(r.Left, r.Top))
}

// Encode writes img to w in format f. quality only applies to JPEG.
func Encode(w io.Writer, img image.Image, f Format, quality int) error {
	if f == FormatWebP {
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("failed to encode webp: %w", err)
		}
		return nil
	}

	format, err := imaging.FormatFromExtension(string(f))
	if err != nil {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err := imaging.Encode(w, img, format, imaging.JPEGQuality(quality)); err != nil {
		return fmt.Errorf("failed to encode %s: %w", f, err)
	}
	return nil
}

// DataURL encodes img and wraps it in a base64 data URL.
func DataURL(img image.Image, f Format, quality int) (string, error) {
	var b bytes.Buffer
	if err := Encode(&b, img, f, quality); err != nil {
		return "", err
	}
	return "data:" + f.MIME() + ";base64," + base64.StdEncoding.EncodeToString(b.Bytes()), nil
}

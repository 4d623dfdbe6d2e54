package main

import (
	"bytes"
	"context"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"imagecutter/internal/cutter"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadOperations(t *testing.T) {
	in := strings.NewReader(`{"type":"crop","filename":"a.png","rect":{"top":1,"left":2,"width":3,"height":3}}
{"type":"crop","filename":"b.png","gestures":[{"type":"down","x":1,"y":2}]}
{"type":"pick","filename":"c.png"}
`)
	ops, err := ReadOperations(in)
	require.NoError(t, err)
	require.Len(t, ops, 3)

	assert.Equal(t, &cutter.Rect{Top: 1, Left: 2, Width: 3, Height: 3}, ops[0].Crop.Rect)
	assert.Equal(t, []PointerEvent{{Type: PointerDown, X: 1, Y: 2}}, ops[1].Crop.Gestures)
	assert.Equal(t, "c.png", ops[2].Pick.Filename)

	var out bytes.Buffer
	printJSONL(&out, ops)
	again, err := ReadOperations(&out)
	require.NoError(t, err)
	assert.Equal(t, ops, again)
}

func TestReadOperationsUnknownType(t *testing.T) {
	_, err := ReadOperations(strings.NewReader(`{"type":"rotate","filename":"a.png"}`))
	require.ErrorContains(t, err, `unknown operation "rotate"`)
}

func TestOperationExecutor(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "photo.png", halves(200, 100))
	out := filepath.Join(dir, "output")

	executor := OperationExecutor{BaseDir: dir, OutputDir: out, Settings: Settings{OutputWidth: 32, OutputHeight: 32}}
	rect := cutter.Rect{Top: 0, Left: 0, Width: 50, Height: 50}
	ops := Operations{
		{Crop: &CropOperation{Filename: "photo.png", Rect: &rect}},
		{Crop: &CropOperation{Filename: "photo.png", Gestures: []PointerEvent{
			{Type: PointerDown, X: 100, Y: 50},
			{Type: PointerMove, X: 130, Y: 50},
			{Type: PointerUp},
		}}},
		{Pick: &PickOperation{Filename: "photo.png"}},
	}
	require.NoError(t, executor.Exec(context.Background(), ops))

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	cut := filepath.Join(out, "photo-"+cropID(rect)+".png")
	img, err := imaging.Open(cut)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 32), img.Bounds())
	r, _, b, _ := img.At(16, 16).RGBA()
	assert.Greater(t, r, b, "left half of the source is red")

	moved := cutter.Rect{Top: 0, Left: 80, Width: 100, Height: 100}
	assert.FileExists(t, filepath.Join(out, "photo-"+cropID(moved)+".png"))
	assert.FileExists(t, filepath.Join(out, "photo.png"))
}

func TestOperationExecutorErrors(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "photo.png", halves(20, 10))
	executor := OperationExecutor{BaseDir: dir, OutputDir: filepath.Join(dir, "output")}

	err := executor.Exec(context.Background(), Operations{
		{Crop: &CropOperation{Filename: "photo.png", Rect: &cutter.Rect{Top: 0, Left: 15, Width: 10, Height: 10}}},
	})
	assert.ErrorIs(t, err, ErrInvalidRect)

	err = executor.Exec(context.Background(), Operations{{Crop: &CropOperation{Filename: "missing.png"}}})
	assert.ErrorIs(t, err, os.ErrNotExist)

	assert.NoError(t, executor.Exec(context.Background(), nil))
}

type sessionImages map[string]SessionImage

func (s sessionImages) SessionImage(id string) (SessionImage, error) {
	src, ok := s[id]
	if !ok {
		return SessionImage{}, ErrSessionNotFound
	}
	return src, nil
}

func TestOperationExecutorSession(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "output")
	executor := OperationExecutor{
		BaseDir:   dir,
		OutputDir: out,
		Sessions: sessionImages{
			"abc": {Name: "dropped.png", Image: halves(100, 300), Settings: Settings{OutputWidth: 16, OutputHeight: 16}},
		},
	}

	rect := cutter.Rect{Top: 0, Left: 0, Width: 100, Height: 100}
	require.NoError(t, executor.Exec(context.Background(), Operations{
		{Crop: &CropOperation{Filename: "dropped.png", Session: "abc", Rect: &rect}},
	}))

	img, err := imaging.Open(filepath.Join(out, "dropped-"+cropID(rect)+".png"))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 16), img.Bounds())

	err = executor.Exec(context.Background(), Operations{{Crop: &CropOperation{Session: "gone"}}})
	assert.ErrorIs(t, err, ErrSessionNotFound)

	executor.Sessions = nil
	err = executor.Exec(context.Background(), Operations{{Crop: &CropOperation{Session: "abc"}}})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

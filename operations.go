package main

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"imagecutter/internal/cutter"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
)

type Operations = []Operation

type Operation struct {
	Crop *CropOperation
	Pick *PickOperation
}

func (o *Operation) UnmarshalJSON(data []byte) error {
	var op struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &op); err != nil {
		return fmt.Errorf("failed to unmarshal operation: %w", err)
	}

	switch op.Type {
	case "crop":
		var crop CropOperation
		if err := json.Unmarshal(data, &crop); err != nil {
			return fmt.Errorf("failed to unmarshal crop operation: %w", err)
		}
		o.Crop = &crop
	case "pick":
		var pick PickOperation
		if err := json.Unmarshal(data, &pick); err != nil {
			return fmt.Errorf("failed to unmarshal pick operation: %w", err)
		}
		o.Pick = &pick
	default:
		return fmt.Errorf("unknown operation %q", op.Type)
	}
	return nil
}

func (o Operation) MarshalJSON() ([]byte, error) {
	switch {
	case o.Crop != nil:
		return json.Marshal(struct {
			Type string `json:"type"`
			CropOperation
		}{"crop", *o.Crop})
	case o.Pick != nil:
		return json.Marshal(struct {
			Type string `json:"type"`
			PickOperation
		}{"pick", *o.Pick})
	}
	return []byte("null"), nil
}

// CropOperation cuts one file, or the image of an open session when Session
// is set. Without Rect the selection starts fitted to the canvas; Gestures are
// then replayed on top of it.
type CropOperation struct {
	Filename string         `json:"filename"`
	Session  string         `json:"session,omitempty"`
	Rect     *cutter.Rect   `json:"rect,omitempty"`
	Gestures []PointerEvent `json:"gestures,omitempty"`
}

type PickOperation struct {
	Filename string `json:"filename"`
}

// cropID identifies a cut by its selection.
func cropID(r cutter.Rect) string {
	m := md5.New()
	_, err := m.Write([]byte(r.String()))
	if err != nil {
		log.Error().Err(err).Msg("failed to hash crop string")
		return ""
	}
	return fmt.Sprintf("%x", m.Sum(nil))
}

// ReadOperations decodes a stream of JSON operations, one value after another.
func ReadOperations(r io.Reader) (Operations, error) {
	var ops Operations
	dec := json.NewDecoder(r)
	for {
		var op Operation
		if err := dec.Decode(&op); err != nil {
			if errors.Is(err, io.EOF) {
				return ops, nil
			}
			return nil, fmt.Errorf("failed to read operation %d: %w", len(ops)+1, err)
		}
		ops = append(ops, op)
	}
}

// SessionImage is the source of an open editing session.
type SessionImage struct {
	Name     string
	Image    image.Image
	Settings Settings
}

// SessionSource resolves open editing sessions, including uploads that never
// existed under BaseDir.
type SessionSource interface {
	SessionImage(id string) (SessionImage, error)
}

type OperationExecutor struct {
	BaseDir   string
	OutputDir string
	Settings  Settings
	Sessions  SessionSource
}

func (r OperationExecutor) Exec(ctx context.Context, ops []Operation) error {
	if len(ops) == 0 {
		log.Ctx(ctx).Warn().Msg("no operations to execute")
		return nil
	}

	pooler := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(runtime.NumCPU())

	if err := os.MkdirAll(r.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", r.OutputDir, err)
	}
	for _, op := range ops {
		pooler.Go(func(ctx context.Context) error {
			if err := r.executeOperation(ctx, op); err != nil {
				log.Ctx(ctx).Error().Err(err).
					Interface("op", op).
					Msg("failed to execute operation")
				return err
			}
			return nil
		})
	}

	if err := pooler.Wait(); err != nil {
		log.Ctx(ctx).Error().
			Err(err).
			Msg("finished with errors")
		return err
	}

	return nil
}

func (r OperationExecutor) executeOperation(ctx context.Context, op Operation) error {
	if op.Crop != nil {
		return r.executeCrop(ctx, *op.Crop)
	} else if op.Pick != nil {
		return r.executePick(ctx, *op.Pick)
	}
	return nil
}

func (r OperationExecutor) executeCrop(ctx context.Context, op CropOperation) error {
	editor, name, err := r.openEditor(ctx, op)
	if err != nil {
		return err
	}
	log.Ctx(ctx).Info().Str("filename", name).Str("session", op.Session).Msg("cropping")

	if op.Rect != nil {
		if err := editor.SetRect(*op.Rect); err != nil {
			return fmt.Errorf("failed to crop %s: %w", name, err)
		}
	}
	for _, ev := range op.Gestures {
		if err := editor.Apply(ev); err != nil {
			return fmt.Errorf("failed to replay gesture on %s: %w", name, err)
		}
	}

	format := editor.Settings().Format
	var b bytes.Buffer
	if err := editor.Encode(&b, format); err != nil {
		return err
	}

	base := filepath.Base(name)
	newName := fmt.Sprintf("%s-%s.%s", strings.TrimSuffix(base, filepath.Ext(base)), cropID(editor.Rect()), format.Ext())
	croppedPath := filepath.Join(r.OutputDir, newName)
	wf, err := os.Create(croppedPath)
	if err != nil {
		return fmt.Errorf("failed to create cropped file %s: %w", newName, err)
	}
	defer wf.Close()
	if _, err := b.WriteTo(wf); err != nil {
		return fmt.Errorf("failed to write cropped data to file %s: %w", newName, err)
	}
	log.Ctx(ctx).Debug().Str("filename", name).Stringer("rect", editor.Rect()).Str("output", newName).Msg("cropped")
	return nil
}

// openEditor loads the image of op, from its session when set and from
// BaseDir otherwise. Session crops keep the session's settings.
func (r OperationExecutor) openEditor(ctx context.Context, op CropOperation) (*Editor, string, error) {
	if op.Session != "" {
		if r.Sessions == nil {
			return nil, "", fmt.Errorf("%w: %s", ErrSessionNotFound, op.Session)
		}
		src, err := r.Sessions.SessionImage(op.Session)
		if err != nil {
			return nil, "", fmt.Errorf("failed to resolve session %s: %w", op.Session, err)
		}
		editor := NewEditor(src.Settings)
		editor.Load(src.Image)
		return editor, src.Name, nil
	}

	sourcePath := filepath.Join(r.BaseDir, op.Filename)
	f, err := os.Open(sourcePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file %s: %w", sourcePath, err)
	}
	defer f.Close()

	editor := NewEditor(r.Settings)
	if err := editor.Drop(ctx, op.Filename, f); err != nil {
		return nil, "", err
	}
	return editor, op.Filename, nil
}

func (r OperationExecutor) executePick(ctx context.Context, op PickOperation) error {
	log.Ctx(ctx).Info().Str("filename", op.Filename).Msg("picking")
	sourcePath := filepath.Join(r.BaseDir, op.Filename)
	savePath := filepath.Join(r.OutputDir, filepath.Base(op.Filename))
	if err := copyFile(sourcePath, savePath); err != nil {
		return fmt.Errorf("failed to pick file %s: %w", op.Filename, err)
	}
	return nil
}

func copyFile(sourcePath, destPath string) error {
	sourceFile, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", sourcePath, err)
	}
	defer sourceFile.Close()

	destFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", destPath, err)
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return fmt.Errorf("failed to copy file from %s to %s: %w", sourcePath, destPath, err)
	}

	return nil
}

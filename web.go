package main

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"imagecutter/internal/cutter"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/rs/zerolog/log"
)

//go:embed static
var staticFS embed.FS
var isDebug = os.Getenv("DEBUG") == "1"

type Config struct {
	RootDir          string
	Settings         Settings
	OnBeforeShutdown func()
	OnReady          func(addr string)
	OnSave           func(ops Operations)
}

type WebApp struct {
	config       Config
	sessions     *sessionStore
	shutdownCh   chan struct{}
	shutdownOnce sync.Once
}

func NewWebApp(config Config) *WebApp {
	return &WebApp{
		config:     config,
		sessions:   newSessionStore(maxSessions),
		shutdownCh: make(chan struct{}),
	}
}

func (a *WebApp) Shutdown() {
	a.shutdownOnce.Do(func() {
		close(a.shutdownCh)
	})
}

func (a *WebApp) Run(ctx context.Context) error {
	webapp := a.newApp()

	webapp.Hooks().OnListen(func(listen fiber.ListenData) error {
		if fn := a.config.OnReady; fn != nil {
			fn(fmt.Sprintf("http://%s:%s", listen.Host, listen.Port))
		}
		return nil
	})

	go func() {
		select {
		case <-ctx.Done():
		case <-a.shutdownCh:
		}
		if fn := a.config.OnBeforeShutdown; fn != nil {
			fn()
		}
		if err := webapp.ShutdownWithTimeout(5 * time.Second); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("Failed to shutdown web application")
		}
	}()

	// Let the OS assign a random available port
	listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", 0))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	if err := webapp.Listener(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

func (a *WebApp) newApp() *fiber.App {
	webapp := fiber.New(fiber.Config{
		Immutable:             true,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Ctx(c.Context()).Error().
				Err(err).
				Str("path", c.Path()).
				Str("method", c.Method()).
				Msg("Request failed")
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				if fiberErr.Code == http.StatusNotFound && c.Path() == "/favicon.ico" {
					return nil
				}
				return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
			}
			if code := statusFor(err); code != http.StatusInternalServerError {
				return c.Status(code).JSON(fiber.Map{"error": err.Error()})
			}
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
		},
	})

	filesRoot := http.Dir(a.config.RootDir)
	webapp.Get("/api/view", func(c *fiber.Ctx) error {
		filePath := c.Query("file")
		return filesystem.SendFile(c, filesRoot, filePath)
	})

	webapp.Get("/api/ls", func(c *fiber.Ctx) error {
		dir, err := walkImages(a.config.RootDir)
		if err != nil {
			return fmt.Errorf("failed to walk dir: %w", err)
		}

		for i := range dir.Files {
			dir.Files[i].URL = "/api/view?file=" + url.QueryEscape(dir.Files[i].Name)
		}

		return c.JSON(dir)
	})

	webapp.Post("/api/sessions", a.createSession)

	webapp.Get("/api/sessions/:id", a.withSession(func(c *fiber.Ctx, sess *session) error {
		view, err := sess.do(func(*Editor) error { return nil })
		if err != nil {
			return err
		}
		return c.JSON(view)
	}))

	webapp.Delete("/api/sessions/:id", func(c *fiber.Ctx) error {
		if !a.sessions.remove(c.Params("id")) {
			return ErrSessionNotFound
		}
		return c.SendStatus(http.StatusNoContent)
	})

	webapp.Post("/api/sessions/:id/pointer", a.withSession(func(c *fiber.Ctx, sess *session) error {
		var ev PointerEvent
		if err := c.BodyParser(&ev); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		view, err := sess.do(func(e *Editor) error { return e.Apply(ev) })
		if err != nil {
			return err
		}
		return c.JSON(view)
	}))

	webapp.Post("/api/sessions/:id/reset", a.withSession(func(c *fiber.Ctx, sess *session) error {
		view, err := sess.do(func(e *Editor) error {
			e.Reset()
			return nil
		})
		if err != nil {
			return err
		}
		return c.JSON(view)
	}))

	webapp.Put("/api/sessions/:id/rect", a.withSession(func(c *fiber.Ctx, sess *session) error {
		var rect cutter.Rect
		if err := c.BodyParser(&rect); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		view, err := sess.do(func(e *Editor) error { return e.SetRect(rect) })
		if err != nil {
			return err
		}
		return c.JSON(view)
	}))

	webapp.Put("/api/sessions/:id/settings", a.withSession(func(c *fiber.Ctx, sess *session) error {
		var settings Settings
		if err := c.BodyParser(&settings); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if settings.Format != "" {
			f, err := ParseFormat(string(settings.Format))
			if err != nil {
				return err
			}
			settings.Format = f
		}
		view, err := sess.do(func(e *Editor) error {
			e.SetSettings(settings)
			return nil
		})
		if err != nil {
			return err
		}
		return c.JSON(view)
	}))

	webapp.Get("/api/sessions/:id/overlay", a.withSession(func(c *fiber.Ctx, sess *session) error {
		var b bytes.Buffer
		if _, err := sess.do(func(e *Editor) error { return e.Overlay(&b) }); err != nil {
			return err
		}
		c.Set(fiber.HeaderCacheControl, "no-store")
		c.Type(FormatPNG.Ext())
		return c.Send(b.Bytes())
	}))

	webapp.Get("/api/sessions/:id/export", a.withSession(func(c *fiber.Ctx, sess *session) error {
		var b bytes.Buffer
		var format Format
		if _, err := sess.do(func(e *Editor) error {
			f, err := queryFormat(c, e.Settings().Format)
			if err != nil {
				return err
			}
			format = f
			return e.Encode(&b, f)
		}); err != nil {
			return err
		}
		base := filepath.Base(sess.Name)
		c.Attachment(fmt.Sprintf("%s-cut.%s", strings.TrimSuffix(base, filepath.Ext(base)), format.Ext()))
		c.Set(fiber.HeaderContentType, format.MIME())
		return c.Send(b.Bytes())
	}))

	webapp.Get("/api/sessions/:id/dataurl", a.withSession(func(c *fiber.Ctx, sess *session) error {
		var dataURL string
		if _, err := sess.do(func(e *Editor) error {
			f, err := queryFormat(c, e.Settings().Format)
			if err != nil {
				return err
			}
			dataURL, err = e.DataURL(f)
			return err
		}); err != nil {
			return err
		}
		return c.SendString(dataURL)
	}))

	webapp.Post("/api/save", func(c *fiber.Ctx) error {
		var request struct {
			Operations []Operation `json:"operations"`
		}

		if err := c.BodyParser(&request); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		if fn := a.config.OnSave; fn != nil {
			fn(request.Operations)
		}

		return c.SendStatus(http.StatusNoContent)
	})
	webapp.Post("/api/shutdown", func(c *fiber.Ctx) error {
		a.Shutdown()
		return nil
	})

	if isDebug {
		log.Debug().Msg("Debug mode enabled, serving static files from './static' directory")
		webapp.Static("/", "static")
	} else {
		log.Debug().Msg("Serving static files from embedded filesystem")
		webapp.Use("/", filesystem.New(filesystem.Config{
			Root:       http.FS(staticFS),
			PathPrefix: "/static",
		}))
	}

	return webapp
}

// createSession opens a session from a multipart "file" upload (a drop) or
// from a JSON {"file": name} relative to the root directory.
func (a *WebApp) createSession(c *fiber.Ctx) error {
	name, r, err := a.openSource(c)
	if err != nil {
		return err
	}
	defer r.Close()

	logger := log.Ctx(c.Context()).With().Str("filename", name).Logger()
	editor := NewEditor(a.config.Settings)
	editor.OnDrop = func(ev DropEvent) {
		b := ev.Image.Bounds()
		logger.Info().Int("width", b.Dx()).Int("height", b.Dy()).Msg("image opened")
	}
	editor.OnChange = func(rect cutter.Rect) {
		logger.Debug().Stringer("rect", rect).Msg("selection changed")
	}
	if err := editor.Drop(logger.WithContext(c.UserContext()), name, r); err != nil {
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	}

	sess := a.sessions.add(name, editor)
	view, err := sess.do(func(*Editor) error { return nil })
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(view)
}

func (a *WebApp) openSource(c *fiber.Ctx) (string, io.ReadCloser, error) {
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return "", nil, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
		}
		return fh.Filename, f, nil
	}

	var request struct {
		File string `json:"file"`
	}
	if err := c.BodyParser(&request); err != nil || request.File == "" {
		return "", nil, fiber.NewError(http.StatusBadRequest, "expected a file upload or a file name")
	}
	f, err := http.Dir(a.config.RootDir).Open(request.File)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil, fiber.NewError(http.StatusNotFound, fmt.Sprintf("file %q not found", request.File))
		}
		return "", nil, fmt.Errorf("failed to open file %s: %w", request.File, err)
	}
	return request.File, f, nil
}

// SessionImage returns the source image and settings of an open session.
func (a *WebApp) SessionImage(id string) (SessionImage, error) {
	sess, err := a.sessions.get(id)
	if err != nil {
		return SessionImage{}, err
	}
	var src SessionImage
	if _, err := sess.do(func(e *Editor) error {
		if e.Image() == nil {
			return ErrNoImage
		}
		src = SessionImage{Name: sess.Name, Image: e.Image(), Settings: e.Settings()}
		return nil
	}); err != nil {
		return SessionImage{}, err
	}
	return src, nil
}

func (a *WebApp) withSession(fn func(c *fiber.Ctx, sess *session) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := a.sessions.get(c.Params("id"))
		if err != nil {
			return err
		}
		return fn(c, sess)
	}
}

func queryFormat(c *fiber.Ctx, fallback Format) (Format, error) {
	if q := c.Query("format"); q != "" {
		return ParseFormat(q)
	}
	return fallback, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNoImage):
		return http.StatusConflict
	case errors.Is(err, ErrUnknownFormat),
		errors.Is(err, ErrUnknownPointerEvent),
		errors.Is(err, ErrInvalidRect):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

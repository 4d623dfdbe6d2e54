package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Send()
	}
}

func run() error {
	var args cliArgs
	cliCtx := kong.Parse(
		&args,
		kong.Name("imagecutter"),
		kong.Description("Cut aspect-locked regions out of images."),
		kong.UsageOnError(),
	)
	if err := cliCtx.Run(); err != nil {
		return err
	}

	return nil
}

type cliArgs struct {
	Serve serveCmd `cmd:"" default:"withargs" help:"Serve the interactive cutter for a directory"`
	Crop  cropCmd  `cmd:"" help:"Execute crop operations without the browser"`
}

// outputFlags are shared by every command that exports cuts.
type outputFlags struct {
	Config    string `help:"YAML settings file" type:"existingfile"`
	Width     int    `help:"Output width in pixels (default 128)"`
	Height    int    `help:"Output height in pixels (default 128)"`
	Pixelated bool   `help:"Resample with nearest neighbor instead of smoothing"`
	Format    string `help:"Output format: png, jpeg, gif, bmp, tiff or webp"`
	Quality   int    `help:"JPEG quality (1-100)"`
	Verbose   bool   `help:"Enable verbose logging" default:"false"`
}

// settings merges the settings file with the flags. Flags win when set.
func (f outputFlags) settings() (Settings, error) {
	var s Settings
	if f.Config != "" {
		loaded, err := LoadSettings(f.Config)
		if err != nil {
			return Settings{}, err
		}
		s = loaded
	}
	if f.Width > 0 {
		s.OutputWidth = f.Width
	}
	if f.Height > 0 {
		s.OutputHeight = f.Height
	}
	if f.Pixelated {
		s.Pixelated = true
	}
	if f.Quality > 0 {
		s.Quality = f.Quality
	}
	if f.Format != "" {
		s.Format = Format(f.Format)
	}
	if s.Format != "" {
		format, err := ParseFormat(string(s.Format))
		if err != nil {
			return Settings{}, err
		}
		s.Format = format
	}
	return s.WithDefaults(), nil
}

func (f outputFlags) setupLogging(ctx context.Context) context.Context {
	level := zerolog.InfoLevel
	if f.Verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = log.Output(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).Level(level)
	zerolog.DefaultContextLogger = &log.Logger

	return log.Logger.WithContext(ctx)
}

type serveCmd struct {
	RootDir string `arg:"" help:"Root directory to serve files from"`
	Open    bool   `help:"Open the browser automatically when the server starts" default:"true" negatable:""`
	JSON    bool   `help:"Output operations in JSON format without executing"`
	Once    bool   `help:"Run the server once and exit after save" default:"true" negatable:""`

	Flags outputFlags `embed:""`
}

func (cmd *serveCmd) Run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	ctx = cmd.Flags.setupLogging(ctx)

	settings, err := cmd.Flags.settings()
	if err != nil {
		return err
	}
	log.Ctx(ctx).Debug().
		Int("width", settings.OutputWidth).
		Int("height", settings.OutputHeight).
		Stringer("ratio", settings.Ratio()).
		Str("format", string(settings.Format)).
		Msg("settings")

	executor := &OperationExecutor{
		BaseDir:   cmd.RootDir,
		OutputDir: filepath.Join(cmd.RootDir, "output"),
		Settings:  settings,
	}

	app := NewWebApp(Config{
		RootDir:  cmd.RootDir,
		Settings: settings,
		OnBeforeShutdown: func() {
			log.Ctx(ctx).Info().Msg("Shutting down web application...")
		},
		OnReady: func(addr string) {
			log.Ctx(ctx).Info().Msgf("Server started at %s", addr)
			if cmd.Open {
				if err := openBrowser(addr); err != nil {
					log.Error().Err(err).Msg("Failed to open browser")
				}
			}
		},
		OnSave: func(ops Operations) {
			if cmd.JSON {
				printJSONL(os.Stdout, ops)
			} else {
				if err := executor.Exec(ctx, ops); err != nil {
					log.Ctx(ctx).Error().Err(err).Msg("Failed to execute operations")
				}
			}

			if cmd.Once {
				cancel()
			}
		},
	})

	executor.Sessions = app

	if err := app.Run(ctx); err != nil {
		return err
	}

	return nil
}

type cropCmd struct {
	Input   string `arg:"" optional:"" help:"File with JSON operations, one per line; stdin when omitted" type:"existingfile"`
	RootDir string `help:"Directory the operation filenames are relative to" default:"."`
	Output  string `help:"Output directory (default <root-dir>/output)"`

	Flags outputFlags `embed:""`
}

func (cmd *cropCmd) Run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	ctx = cmd.Flags.setupLogging(ctx)

	settings, err := cmd.Flags.settings()
	if err != nil {
		return err
	}

	var in io.Reader = os.Stdin
	if cmd.Input != "" {
		f, err := os.Open(cmd.Input)
		if err != nil {
			return fmt.Errorf("failed to open operations %s: %w", cmd.Input, err)
		}
		defer f.Close()
		in = f
	}
	ops, err := ReadOperations(in)
	if err != nil {
		return err
	}

	outputDir := cmd.Output
	if outputDir == "" {
		outputDir = filepath.Join(cmd.RootDir, "output")
	}
	executor := OperationExecutor{
		BaseDir:   cmd.RootDir,
		OutputDir: outputDir,
		Settings:  settings,
	}
	return executor.Exec(ctx, ops)
}

func printJSONL[T any](w io.Writer, data []T) {
	enc := json.NewEncoder(w)
	for _, item := range data {
		if err := enc.Encode(item); err != nil {
			log.Error().Err(err).Msg("Failed to encode item to JSON")
			continue
		}
	}
}

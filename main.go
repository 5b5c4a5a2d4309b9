package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/olivier-w/climpviz/internal/audio"
	"github.com/olivier-w/climpviz/internal/config"
	"github.com/olivier-w/climpviz/internal/loader"
	"github.com/olivier-w/climpviz/internal/media"
	"github.com/olivier-w/climpviz/internal/ui"
	"github.com/olivier-w/climpviz/internal/visualizer"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Parse(args, os.Stderr)
	if err != nil {
		return err
	}
	if err := media.CheckSound(cfg.SoundPath); err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogPath)
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	g, err := audio.NewGraph(cfg.SampleRate)
	if err != nil {
		return err
	}
	out, err := audio.NewOutput(g, int(cfg.SampleRate), logger)
	if err != nil {
		return err
	}
	defer out.Close()

	canvas, err := visualizer.NewPixelCanvas(cfg.Width, cfg.Height)
	if err != nil {
		return err
	}
	frames := ui.NewFrameScheduler()
	ctrl, err := visualizer.New(cfg, visualizer.GraphHost(g), canvas, frames, logger)
	if err != nil {
		return err
	}

	title := loader.ReadTitle(cfg.SoundPath)
	program := tea.NewProgram(ui.New(ctrl, canvas, frames, title), tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sound := loader.Sound{Name: title, Path: cfg.SoundPath}
	loader.New(cfg.SampleRate, logger).LoadAsync(ctx, []loader.Sound{sound}, func(clips map[string]*audio.Clip, err error) {
		program.Send(ui.LoadedMsg{Clip: clips[sound.Name], Err: err})
	})

	logger.Info("starting",
		zap.String("sound", cfg.SoundPath),
		zap.Float64("sampleRate", cfg.SampleRate),
		zap.Int("fftSize", cfg.FFTSize),
	)
	_, err = program.Run()
	return err
}

// newLogger writes JSON lines to path. Without a path logging is disabled,
// since the terminal belongs to the UI.
func newLogger(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	zc.OutputPaths = []string{path}
	zc.ErrorOutputPaths = []string{path}
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zc.Build()
}

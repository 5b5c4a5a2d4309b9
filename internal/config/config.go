// Package config holds the immutable settings of the visualizer and parses
// them from command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"
)

// DefaultSound is played when no file is given on the command line.
const DefaultSound = "yanny-laurel-single.wav"

var ErrInvalidConfig = errors.New("invalid config")

// Config is fixed for the lifetime of the process.
type Config struct {
	Width  int // canvas width in pixels
	Height int // canvas height in pixels

	FFTSize     int
	Smoothing   float64
	MinDecibels float64
	MaxDecibels float64

	MinFrequency    float64 // lowest cutoff reachable with the frequency control
	FilterFrequency float64 // cutoff applied when the filter is switched on
	FilterQ         float64

	SampleRate float64
	FrameRate  int

	SoundPath string
	LogPath   string
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Width:           640,
		Height:          360,
		FFTSize:         2048,
		Smoothing:       0.8,
		MinDecibels:     -140,
		MaxDecibels:     0,
		MinFrequency:    40,
		FilterFrequency: 5000,
		FilterQ:         1,
		SampleRate:      48000,
		FrameRate:       60,
		SoundPath:       DefaultSound,
	}
}

// BinCount is the number of frequency bins, half the transform size.
func (c Config) BinCount() int { return c.FFTSize / 2 }

// Nyquist is half the sampling rate.
func (c Config) Nyquist() float64 { return c.SampleRate / 2 }

// FrameInterval is the time between rendered frames.
func (c Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FrameRate)
}

// Validate checks that the configuration can drive the visualizer.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: canvas %dx%d", ErrInvalidConfig, c.Width, c.Height)
	case c.FFTSize < 32 || c.FFTSize > 32768 || c.FFTSize&(c.FFTSize-1) != 0:
		return fmt.Errorf("%w: fft size %d is not a power of two in [32, 32768]", ErrInvalidConfig, c.FFTSize)
	case c.Smoothing < 0 || c.Smoothing > 1:
		return fmt.Errorf("%w: smoothing %v outside [0, 1]", ErrInvalidConfig, c.Smoothing)
	case c.MinDecibels >= c.MaxDecibels:
		return fmt.Errorf("%w: decibel range [%v, %v]", ErrInvalidConfig, c.MinDecibels, c.MaxDecibels)
	case c.SampleRate < 8000:
		return fmt.Errorf("%w: sample rate %v", ErrInvalidConfig, c.SampleRate)
	case c.MinFrequency <= 0 || c.MinFrequency >= c.Nyquist():
		return fmt.Errorf("%w: min frequency %v outside (0, %v)", ErrInvalidConfig, c.MinFrequency, c.Nyquist())
	case c.FilterFrequency <= 0 || c.FilterFrequency > c.Nyquist():
		return fmt.Errorf("%w: filter frequency %v outside (0, %v]", ErrInvalidConfig, c.FilterFrequency, c.Nyquist())
	case c.FilterQ <= 0:
		return fmt.Errorf("%w: filter Q %v", ErrInvalidConfig, c.FilterQ)
	case c.FrameRate <= 0 || c.FrameRate > 240:
		return fmt.Errorf("%w: frame rate %d", ErrInvalidConfig, c.FrameRate)
	case c.SoundPath == "":
		return fmt.Errorf("%w: no sound file", ErrInvalidConfig)
	}
	return nil
}

// Parse reads flags and an optional positional sound path from args
// (without the program name).
func Parse(args []string, output io.Writer) (Config, error) {
	cfg := Default()

	fs := flag.NewFlagSet("climpviz", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: climpviz [flags] [file]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.IntVar(&cfg.Width, "width", cfg.Width, "canvas width in pixels")
	fs.IntVar(&cfg.Height, "height", cfg.Height, "canvas height in pixels")
	fs.IntVar(&cfg.FFTSize, "fft", cfg.FFTSize, "transform size (power of two)")
	fs.Float64Var(&cfg.Smoothing, "smoothing", cfg.Smoothing, "spectrum smoothing time constant")
	fs.Float64Var(&cfg.MinDecibels, "min-db", cfg.MinDecibels, "level drawn as an empty bar")
	fs.Float64Var(&cfg.MaxDecibels, "max-db", cfg.MaxDecibels, "level drawn as a full bar")
	fs.Float64Var(&cfg.MinFrequency, "min-freq", cfg.MinFrequency, "lowest cutoff of the frequency control in Hz")
	fs.Float64Var(&cfg.FilterFrequency, "filter-freq", cfg.FilterFrequency, "high-pass cutoff when the filter is enabled in Hz")
	fs.Float64Var(&cfg.FilterQ, "q", cfg.FilterQ, "filter quality factor")
	fs.Float64Var(&cfg.SampleRate, "rate", cfg.SampleRate, "output sample rate in Hz")
	fs.IntVar(&cfg.FrameRate, "fps", cfg.FrameRate, "frames drawn per second")
	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "write a JSON log to this file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	switch fs.NArg() {
	case 0:
	case 1:
		cfg.SoundPath = fs.Arg(0)
	default:
		return Config{}, fmt.Errorf("%w: expected at most one file, got %d", ErrInvalidConfig, fs.NArg())
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Package visualizer drives playback of a clip through an optional
// high-pass filter and paints its spectrum and waveform every frame.
package visualizer

import (
	"fmt"
	"image/color"
	"math"

	"go.uber.org/zap"

	"github.com/olivier-w/climpviz/internal/audio"
	"github.com/olivier-w/climpviz/internal/config"
)

// PlaybackState tells whether the frame loop is active.
type PlaybackState int

const (
	Stopped PlaybackState = iota
	Playing
)

func (s PlaybackState) String() string {
	if s == Playing {
		return "playing"
	}
	return "stopped"
}

// FilterState tells which signal path is wired.
type FilterState int

const (
	Unfiltered FilterState = iota
	Filtered
)

func (s FilterState) String() string {
	if s == Filtered {
		return "filtered"
	}
	return "unfiltered"
}

// Controller owns the graph topology (source → [filter] → analyser →
// destination) and the per-frame rendering. It is not safe for concurrent
// use: every call, including frame callbacks, must come from one goroutine.
type Controller struct {
	cfg    config.Config
	host   Host
	canvas Canvas
	frames Scheduler
	logger *zap.Logger
	errs   chan error

	analyser Analyser
	filter   Filter
	source   Source
	clip     *audio.Clip
	effects  []audio.Node

	playback     PlaybackState
	filtering    FilterState
	framePending bool
	startTime    float64
	offset       float64
	control      float64

	freqs []byte
	times []byte
}

// New builds the analyser and filter stages and wires the analyser to the
// destination.
func New(cfg config.Config, host Host, canvas Canvas, frames Scheduler, logger *zap.Logger) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	analyser, err := host.NewAnalyser(cfg.FFTSize, cfg.Smoothing)
	if err != nil {
		return nil, fmt.Errorf("%w: analyser: %w", ErrGraphConstruction, err)
	}
	if err := analyser.SetDecibelRange(cfg.MinDecibels, cfg.MaxDecibels); err != nil {
		return nil, fmt.Errorf("%w: analyser: %w", ErrGraphConstruction, err)
	}
	filter, err := host.NewFilter()
	if err != nil {
		return nil, fmt.Errorf("%w: filter: %w", ErrGraphConstruction, err)
	}
	effects, err := newEffects(host)
	if err != nil {
		return nil, err
	}
	if err := host.Connect(analyser, host.Destination()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGraphConstruction, err)
	}

	bins := analyser.FrequencyBinCount()
	c := &Controller{
		cfg:      cfg,
		host:     host,
		canvas:   canvas,
		frames:   frames,
		logger:   logger,
		errs:     make(chan error, errorBuffer),
		analyser: analyser,
		filter:   filter,
		effects:  effects,
		freqs:    make([]byte, bins),
		times:    make([]byte, bins),
	}
	c.control = ControlForFrequency(filter.Frequency(), cfg.MinFrequency, c.maxFrequency())
	return c, nil
}

// newEffects builds the gain, wave shaper and convolver stages. They are
// never connected; the signal path is only source, filter and analyser.
func newEffects(host Host) ([]audio.Node, error) {
	gain, err := host.NewGain()
	if err != nil {
		return nil, fmt.Errorf("%w: gain: %w", ErrGraphConstruction, err)
	}
	shaper, err := host.NewWaveShaper(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: wave shaper: %w", ErrGraphConstruction, err)
	}
	convolver, err := host.NewConvolver([]float64{1})
	if err != nil {
		return nil, fmt.Errorf("%w: convolver: %w", ErrGraphConstruction, err)
	}
	return []audio.Node{gain, shaper, convolver}, nil
}

// SetClip hands over the decoded sound. It takes effect on the next play.
func (c *Controller) SetClip(clip *audio.Clip) {
	c.clip = clip
}

// TogglePlayback pauses when playing and resumes where it left off when
// stopped. A failed start leaves the controller stopped.
func (c *Controller) TogglePlayback() error {
	if c.playback == Playing {
		return c.pause()
	}
	return c.play()
}

func (c *Controller) pause() error {
	now := c.host.CurrentTime()
	err := c.source.Stop()
	c.host.Disconnect(c.source)
	c.source = nil
	c.offset += now - c.startTime
	c.playback = Stopped
	c.logger.Debug("paused", zap.Float64("offset", c.offset))
	if err != nil {
		return c.report(fmt.Errorf("stopping source: %w", err))
	}
	return nil
}

func (c *Controller) play() error {
	if c.clip == nil || c.clip.Duration() <= 0 {
		return c.report(fmt.Errorf("%w: %w", ErrPlaybackStart, ErrNoClip))
	}

	now := c.host.CurrentTime()
	src, err := c.host.NewSource(c.clip)
	if err != nil {
		return c.report(fmt.Errorf("%w: %w", ErrPlaybackStart, err))
	}
	if err := c.host.Connect(src, c.entry()); err != nil {
		c.host.Disconnect(src)
		return c.report(fmt.Errorf("%w: %w", ErrPlaybackStart, err))
	}
	if err := c.host.Connect(c.analyser, c.host.Destination()); err != nil {
		c.host.Disconnect(src)
		return c.report(fmt.Errorf("%w: %w", ErrPlaybackStart, err))
	}
	at := math.Mod(c.offset, c.clip.Duration())
	if err := src.Start(at); err != nil {
		c.host.Disconnect(src)
		return c.report(fmt.Errorf("%w: %w", ErrPlaybackStart, err))
	}

	c.source = src
	c.startTime = now
	c.playback = Playing
	c.logger.Debug("started", zap.Float64("offset", at), zap.Stringer("path", c.filtering))
	c.requestFrame()
	return nil
}

// entry is the node the source feeds in the current signal path.
func (c *Controller) entry() audio.Node {
	if c.filtering == Filtered {
		return c.filter
	}
	return c.analyser
}

// ToggleFilter switches between source → analyser and
// source → high-pass → analyser without interrupting playback. On failure
// the previous wiring, filter settings and state are restored.
func (c *Controller) ToggleFilter() error {
	next := Filtered
	if c.filtering == Filtered {
		next = Unfiltered
	}

	prevType, prevFreq, prevQ := c.filter.Type(), c.filter.Frequency(), c.filter.Q()
	prevControl := c.control
	if err := c.wire(next); err != nil {
		if rbErr := c.wire(c.filtering); rbErr != nil {
			c.logger.Error("restoring signal path", zap.Error(rbErr))
		}
		c.filter.SetType(prevType)
		c.filter.SetFrequency(prevFreq)
		c.filter.SetQ(prevQ)
		c.control = prevControl
		return c.report(fmt.Errorf("%w: switching to %s: %w", ErrGraphConstruction, next, err))
	}
	c.filtering = next
	c.logger.Debug("signal path switched", zap.Stringer("path", next))
	return nil
}

func (c *Controller) wire(state FilterState) error {
	if c.source != nil {
		c.host.Disconnect(c.source)
	}
	c.host.Disconnect(c.filter)

	if state == Filtered {
		c.filter.SetType(audio.Highpass)
		c.filter.SetFrequency(c.cfg.FilterFrequency)
		c.filter.SetQ(c.cfg.FilterQ)
		c.control = ControlForFrequency(c.cfg.FilterFrequency, c.cfg.MinFrequency, c.maxFrequency())
		if c.source != nil {
			if err := c.host.Connect(c.source, c.filter); err != nil {
				return err
			}
		}
		if err := c.host.Connect(c.filter, c.analyser); err != nil {
			return err
		}
	} else if c.source != nil {
		if err := c.host.Connect(c.source, c.analyser); err != nil {
			return err
		}
	}
	return c.host.Connect(c.analyser, c.host.Destination())
}

// ChangeFrequency maps a control value in [0, 1] onto the filter cutoff on
// an octave scale and applies it immediately. It returns the new cutoff.
func (c *Controller) ChangeFrequency(v float64) float64 {
	v = clamp01(v)
	cutoff := FrequencyForControl(v, c.cfg.MinFrequency, c.maxFrequency())
	c.filter.SetFrequency(cutoff)
	c.control = v
	return cutoff
}

func (c *Controller) maxFrequency() float64 {
	return c.host.SampleRate() / 2
}

func (c *Controller) requestFrame() {
	if c.framePending || c.frames == nil {
		return
	}
	c.framePending = true
	c.frames.RequestFrame(c.onFrame)
}

func (c *Controller) onFrame() {
	c.framePending = false
	_ = c.RenderFrame()
}

// RenderFrame refreshes the sample buffers and paints one frame. It
// re-requests itself while playing, also after a failed frame.
func (c *Controller) RenderFrame() error {
	err := c.draw()
	if err != nil {
		err = c.report(err)
	}
	if c.playback == Playing {
		c.requestFrame()
	}
	return err
}

func (c *Controller) draw() error {
	c.analyser.ByteFrequencyData(c.freqs)
	c.analyser.ByteTimeDomainData(c.times)

	if c.canvas == nil {
		return fmt.Errorf("%w: no canvas", ErrDraw)
	}
	if err := c.canvas.SetSize(c.cfg.Width, c.cfg.Height); err != nil {
		return fmt.Errorf("%w: %w", ErrDraw, err)
	}

	width, height := float64(c.cfg.Width), float64(c.cfg.Height)
	bins := len(c.freqs)
	barWidth := width / float64(bins)

	for i, v := range c.freqs {
		h := BarHeight(v, height)
		c.canvas.FillRect(float64(i)*barWidth, height-h, barWidth, h, BinColor(i, bins))
	}
	for i, v := range c.times {
		y := height - BarHeight(v, height) - 1
		if y < 0 {
			y = 0
		}
		c.canvas.FillRect(float64(i)*barWidth, y, 1, 2, color.White)
	}
	return nil
}

// FrequencyValue returns the magnitude byte of the bin nearest to freq Hz
// from the last rendered frame.
func (c *Controller) FrequencyValue(freq float64) byte {
	return c.freqs[FrequencyBin(freq, c.maxFrequency(), len(c.freqs))]
}

// report logs err and offers it to the error channel without blocking.
func (c *Controller) report(err error) error {
	c.logger.Warn("visualizer error", zap.Error(err))
	select {
	case c.errs <- err:
	default:
		c.logger.Warn("error channel full, dropping report")
	}
	return err
}

// Errors delivers every reported error.
func (c *Controller) Errors() <-chan error { return c.errs }

// State returns the playback state.
func (c *Controller) State() PlaybackState { return c.playback }

// Filter returns the signal path state.
func (c *Controller) Filter() FilterState { return c.filtering }

// Offset returns the accumulated playback time in seconds.
func (c *Controller) Offset() float64 { return c.offset }

// Position returns the playhead position within the clip in seconds.
func (c *Controller) Position() float64 {
	d := c.clip.Duration()
	if d <= 0 {
		return 0
	}
	pos := c.offset
	if c.playback == Playing {
		pos += c.host.CurrentTime() - c.startTime
	}
	return math.Mod(pos, d)
}

// Duration returns the clip length in seconds.
func (c *Controller) Duration() float64 { return c.clip.Duration() }

// Cutoff returns the live filter frequency.
func (c *Controller) Cutoff() float64 { return c.filter.Frequency() }

// Control returns the current frequency control value in [0, 1].
func (c *Controller) Control() float64 { return c.control }

// BinCount returns the number of frequency bins.
func (c *Controller) BinCount() int { return len(c.freqs) }

// Frequencies returns the magnitude bytes of the last frame. The slice is
// reused by the next frame.
func (c *Controller) Frequencies() []byte { return c.freqs }

// TimeDomain returns the waveform bytes of the last frame. The slice is
// reused by the next frame.
func (c *Controller) TimeDomain() []byte { return c.times }

// Effects returns the unconnected effect stages built alongside the graph.
func (c *Controller) Effects() []audio.Node { return c.effects }

// Config returns the configuration the controller was built with.
func (c *Controller) Config() config.Config { return c.cfg }

package visualizer

import (
	"fmt"
	"image/color"

	"github.com/olivier-w/climpviz/internal/audio"
)

// Host is the audio graph the controller drives.
type Host interface {
	SampleRate() float64
	CurrentTime() float64
	Destination() audio.Node
	NewAnalyser(fftSize int, smoothing float64) (Analyser, error)
	NewFilter() (Filter, error)
	NewSource(clip *audio.Clip) (Source, error)
	NewGain() (audio.Node, error)
	NewWaveShaper(curve []float64) (audio.Node, error)
	NewConvolver(impulse []float64) (audio.Node, error)
	Connect(from, to audio.Node) error
	Disconnect(n audio.Node)
}

// Analyser exposes per-frame snapshots of the signal passing through it.
type Analyser interface {
	audio.Node
	FrequencyBinCount() int
	SetDecibelRange(minDB, maxDB float64) error
	ByteFrequencyData(dst []byte)
	ByteTimeDomainData(dst []byte)
}

// Filter is the optional stage between source and analyser.
type Filter interface {
	audio.Node
	Type() audio.FilterType
	SetType(t audio.FilterType)
	Frequency() float64
	SetFrequency(hz float64)
	Q() float64
	SetQ(q float64)
}

// Source plays the clip. It is started once and then discarded.
type Source interface {
	audio.Node
	Start(offset float64) error
	Stop() error
}

// Scheduler runs a callback on the next display frame.
type Scheduler interface {
	RequestFrame(cb func())
}

// Canvas is the drawing surface. SetSize clears it.
type Canvas interface {
	SetSize(width, height int) error
	FillRect(x, y, w, h float64, c color.Color)
}

// GraphHost adapts an audio graph to Host. Sources loop.
func GraphHost(g *audio.Graph) Host {
	return graphHost{g}
}

type graphHost struct {
	*audio.Graph
}

func (h graphHost) NewAnalyser(fftSize int, smoothing float64) (Analyser, error) {
	a, err := audio.NewAnalyser(fftSize, smoothing)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (h graphHost) NewFilter() (Filter, error) {
	return audio.NewBiquadFilter(h.SampleRate()), nil
}

func (h graphHost) NewSource(clip *audio.Clip) (Source, error) {
	if clip != nil && clip.SampleRate != h.SampleRate() {
		return nil, fmt.Errorf("clip at %v Hz does not match graph at %v Hz", clip.SampleRate, h.SampleRate())
	}
	s, err := audio.NewBufferSource(clip, true)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (h graphHost) NewGain() (audio.Node, error) {
	return audio.NewGain(), nil
}

func (h graphHost) NewWaveShaper(curve []float64) (audio.Node, error) {
	return audio.NewWaveShaper(curve), nil
}

func (h graphHost) NewConvolver(impulse []float64) (audio.Node, error) {
	c, err := audio.NewConvolver(impulse)
	if err != nil {
		return nil, err
	}
	return c, nil
}

package audio

import (
	"errors"
	"sync"
)

var ErrEmptyImpulse = errors.New("audio: impulse response is empty")

// Gain scales its input.
type Gain struct {
	mu   sync.Mutex
	gain float64
}

// NewGain creates a unity gain node.
func NewGain() *Gain { return &Gain{gain: 1} }

func (g *Gain) Name() string { return "gain" }

// Gain returns the current linear gain.
func (g *Gain) Gain() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gain
}

// SetGain sets the linear gain.
func (g *Gain) SetGain(v float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gain = v
}

func (g *Gain) Process(in, out []float64) {
	g.mu.Lock()
	k := g.gain
	g.mu.Unlock()
	for i, v := range in {
		out[i] = v * k
	}
}

// WaveShaper maps each sample through a transfer curve spanning [-1, 1].
// A nil curve passes audio through.
type WaveShaper struct {
	mu    sync.Mutex
	curve []float64
}

// NewWaveShaper creates a shaper with the given curve.
func NewWaveShaper(curve []float64) *WaveShaper {
	return &WaveShaper{curve: append([]float64(nil), curve...)}
}

func (w *WaveShaper) Name() string { return "wave shaper" }

// SetCurve replaces the transfer curve.
func (w *WaveShaper) SetCurve(curve []float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.curve = append(w.curve[:0], curve...)
}

func (w *WaveShaper) Process(in, out []float64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := len(w.curve)
	if n == 0 {
		copy(out, in)
		return
	}
	if n == 1 {
		for i := range out {
			out[i] = w.curve[0]
		}
		return
	}
	for i, x := range in {
		pos := (x + 1) / 2 * float64(n-1)
		switch {
		case pos <= 0:
			out[i] = w.curve[0]
		case pos >= float64(n-1):
			out[i] = w.curve[n-1]
		default:
			k := int(pos)
			frac := pos - float64(k)
			out[i] = w.curve[k] + (w.curve[k+1]-w.curve[k])*frac
		}
	}
}

// Convolver applies a finite impulse response by direct convolution.
type Convolver struct {
	mu      sync.Mutex
	impulse []float64
	history []float64
	w       int
}

// NewConvolver creates a convolver for the given impulse response.
func NewConvolver(impulse []float64) (*Convolver, error) {
	if len(impulse) == 0 {
		return nil, ErrEmptyImpulse
	}
	return &Convolver{
		impulse: append([]float64(nil), impulse...),
		history: make([]float64, len(impulse)),
	}, nil
}

func (c *Convolver) Name() string { return "convolver" }

func (c *Convolver) Process(in, out []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.impulse)
	for i, x := range in {
		c.history[c.w] = x
		var acc float64
		idx := c.w
		for _, h := range c.impulse {
			acc += h * c.history[idx]
			idx--
			if idx < 0 {
				idx = n - 1
			}
		}
		out[i] = acc
		c.w = (c.w + 1) % n
	}
}

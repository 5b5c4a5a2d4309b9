package audio

import (
	"math"
	"math/cmplx"
	"sync"
)

// FilterType selects the biquad response.
type FilterType int

const (
	Lowpass FilterType = iota
	Highpass
	Bandpass
	Notch
	Allpass
)

// String returns the Web Audio name of the filter type.
func (t FilterType) String() string {
	switch t {
	case Highpass:
		return "highpass"
	case Bandpass:
		return "bandpass"
	case Notch:
		return "notch"
	case Allpass:
		return "allpass"
	default:
		return "lowpass"
	}
}

const (
	defaultFilterFrequency = 350
	defaultFilterQ         = 1
	minFilterFrequency     = 10
)

// BiquadFilter is a second-order IIR filter using the RBJ cookbook designs.
// Parameters can change while audio flows; the delay state is kept so the
// change is click-free.
type BiquadFilter struct {
	mu         sync.Mutex
	sampleRate float64
	typ        FilterType
	frequency  float64
	q          float64

	b0, b1, b2 float64
	a1, a2     float64
	d0, d1     float64
}

// NewBiquadFilter creates a lowpass filter at 350 Hz, matching the Web Audio
// defaults.
func NewBiquadFilter(sampleRate float64) *BiquadFilter {
	f := &BiquadFilter{
		sampleRate: sampleRate,
		typ:        Lowpass,
		frequency:  defaultFilterFrequency,
		q:          defaultFilterQ,
	}
	f.design()
	return f
}

func (f *BiquadFilter) Name() string { return "biquad filter" }

// Type returns the current response type.
func (f *BiquadFilter) Type() FilterType {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.typ
}

// SetType changes the response type.
func (f *BiquadFilter) SetType(t FilterType) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.typ = t
	f.design()
}

// Frequency returns the cutoff or center frequency as last set.
func (f *BiquadFilter) Frequency() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frequency
}

// SetFrequency sets the cutoff or center frequency in Hz. Values outside
// (0, nyquist) are clamped when designing the coefficients.
func (f *BiquadFilter) SetFrequency(hz float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frequency = hz
	f.design()
}

// Q returns the quality factor.
func (f *BiquadFilter) Q() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.q
}

// SetQ sets the quality factor. Non-positive values fall back to the default.
func (f *BiquadFilter) SetQ(q float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.q = q
	f.design()
}

// MagnitudeAt returns the linear gain of the filter at freq Hz.
func (f *BiquadFilter) MagnitudeAt(freq float64) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	w := 2 * math.Pi * freq / f.sampleRate
	z1 := complex(math.Cos(-w), math.Sin(-w))
	z2 := z1 * z1
	num := complex(f.b0, 0) + complex(f.b1, 0)*z1 + complex(f.b2, 0)*z2
	den := 1 + complex(f.a1, 0)*z1 + complex(f.a2, 0)*z2
	return cmplx.Abs(num / den)
}

// design recomputes coefficients; f.mu must be held.
func (f *BiquadFilter) design() {
	nyquist := f.sampleRate / 2
	freq := f.frequency
	if freq < minFilterFrequency || math.IsNaN(freq) {
		freq = minFilterFrequency
	}
	if freq > nyquist*0.999 {
		freq = nyquist * 0.999
	}
	q := f.q
	if q <= 0 || math.IsNaN(q) {
		q = defaultFilterQ
	}

	w0 := 2 * math.Pi * freq / f.sampleRate
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	var b0, b1, b2 float64
	switch f.typ {
	case Highpass:
		b0 = (1 + cw) / 2
		b1 = -(1 + cw)
		b2 = (1 + cw) / 2
	case Bandpass:
		b0 = alpha
		b1 = 0
		b2 = -alpha
	case Notch:
		b0 = 1
		b1 = -2 * cw
		b2 = 1
	case Allpass:
		b0 = 1 - alpha
		b1 = -2 * cw
		b2 = 1 + alpha
	default:
		b0 = (1 - cw) / 2
		b1 = 1 - cw
		b2 = (1 - cw) / 2
	}
	a0 := 1 + alpha
	f.b0 = b0 / a0
	f.b1 = b1 / a0
	f.b2 = b2 / a0
	f.a1 = -2 * cw / a0
	f.a2 = (1 - alpha) / a0
}

// Process runs Direct Form II Transposed over one quantum.
func (f *BiquadFilter) Process(in, out []float64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, x := range in {
		y := f.b0*x + f.d0
		f.d0 = f.b1*x - f.a1*y + f.d1
		f.d1 = f.b2*x - f.a2*y
		out[i] = y
	}
}

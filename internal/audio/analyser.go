package audio

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

const (
	minFFTSize = 32
	maxFFTSize = 32768

	DefaultMinDecibels = -100
	DefaultMaxDecibels = -30
)

var (
	ErrInvalidFFTSize   = errors.New("audio: fft size must be a power of two in [32, 32768]")
	ErrInvalidSmoothing = errors.New("audio: smoothing must be in [0, 1]")
	ErrInvalidDecibels  = errors.New("audio: min decibels must be below max decibels")
)

// Analyser passes audio through unchanged while keeping the most recent
// fftSize samples, and exposes smoothed spectrum and waveform snapshots the
// way a Web Audio AnalyserNode does.
type Analyser struct {
	mu        sync.Mutex
	fftSize   int
	smoothing float64
	minDB     float64
	maxDB     float64

	history  *ringBuffer
	window   []float64
	fft      *fourier.FFT
	frame    []float64
	coeffs   []complex128
	smoothed []float64
	seen     uint64
	computed bool
}

// NewAnalyser creates an analyser with the given transform size and
// smoothing time constant.
func NewAnalyser(fftSize int, smoothing float64) (*Analyser, error) {
	if fftSize < minFFTSize || fftSize > maxFFTSize || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFFTSize, fftSize)
	}
	if smoothing < 0 || smoothing > 1 || math.IsNaN(smoothing) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSmoothing, smoothing)
	}

	win := make([]float64, fftSize)
	for i := range win {
		win[i] = 1
	}

	return &Analyser{
		fftSize:   fftSize,
		smoothing: smoothing,
		minDB:     DefaultMinDecibels,
		maxDB:     DefaultMaxDecibels,
		history:   newRingBuffer(fftSize),
		window:    window.Blackman(win),
		fft:       fourier.NewFFT(fftSize),
		frame:     make([]float64, fftSize),
		coeffs:    make([]complex128, fftSize/2+1),
		smoothed:  make([]float64, fftSize/2),
	}, nil
}

func (a *Analyser) Name() string { return "analyser" }

// FrequencyBinCount returns half the transform size.
func (a *Analyser) FrequencyBinCount() int { return a.fftSize / 2 }

// SetDecibelRange sets the range mapped onto bytes 0..255 by
// ByteFrequencyData.
func (a *Analyser) SetDecibelRange(minDB, maxDB float64) error {
	if !(minDB < maxDB) {
		return fmt.Errorf("%w: [%v, %v]", ErrInvalidDecibels, minDB, maxDB)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.minDB = minDB
	a.maxDB = maxDB
	return nil
}

func (a *Analyser) Process(in, out []float64) {
	copy(out, in)
	a.history.Write(in)
}

// ByteTimeDomainData writes the oldest len(dst) samples of the current
// window as bytes, 128 being silence.
func (a *Analyser) ByteTimeDomainData(dst []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.history.Latest(a.frame)
	n := min(len(dst), a.fftSize)
	for i := range n {
		dst[i] = clampByte(128 * (1 + a.frame[i]))
	}
}

// ByteFrequencyData writes the smoothed magnitude spectrum scaled between
// the decibel range onto 0..255.
func (a *Analyser) ByteFrequencyData(dst []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.computeSpectrum()
	scale := 255 / (a.maxDB - a.minDB)
	n := min(len(dst), len(a.smoothed))
	for i := range n {
		db := linearToDecibels(a.smoothed[i])
		dst[i] = clampByte(scale * (db - a.minDB))
	}
}

// FloatFrequencyData writes the smoothed magnitude spectrum in decibels.
func (a *Analyser) FloatFrequencyData(dst []float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.computeSpectrum()
	n := min(len(dst), len(a.smoothed))
	for i := range n {
		dst[i] = linearToDecibels(a.smoothed[i])
	}
}

// computeSpectrum runs the windowed FFT and smoothing once per batch of new
// samples so repeated reads within a frame do not over-smooth; a.mu must be
// held.
func (a *Analyser) computeSpectrum() {
	written := a.history.Latest(a.frame)
	if a.computed && written == a.seen {
		return
	}
	a.seen = written
	a.computed = true

	for i, w := range a.window {
		a.frame[i] *= w
	}
	a.coeffs = a.fft.Coefficients(a.coeffs, a.frame)

	norm := 1 / float64(a.fftSize)
	tau := a.smoothing
	for k := range a.smoothed {
		mag := math.Hypot(real(a.coeffs[k]), imag(a.coeffs[k])) * norm
		v := tau*a.smoothed[k] + (1-tau)*mag
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		a.smoothed[k] = v
	}
}

func linearToDecibels(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(v)
}

func clampByte(v float64) byte {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(v)
}

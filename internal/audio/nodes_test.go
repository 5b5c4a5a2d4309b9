package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(freq, rate float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / rate)
	}
	return out
}

func TestBufferSourceStartsAtOffsetAndLoops(t *testing.T) {
	clip := &Clip{Samples: []float64{0, 1, 2, 3}, SampleRate: 4}
	src, err := NewBufferSource(clip, true)
	require.NoError(t, err)
	require.NoError(t, src.Start(2.5)) // wraps to sample 2

	out := make([]float64, 6)
	src.Process(nil, out)
	assert.Equal(t, []float64{2, 3, 0, 1, 2, 3}, out)
	assert.ErrorIs(t, src.Start(0), ErrAlreadyStarted)
}

func TestBufferSourceEndsWithoutLoop(t *testing.T) {
	clip := &Clip{Samples: []float64{1, 1, 1}, SampleRate: 3}
	src, err := NewBufferSource(clip, false)
	require.NoError(t, err)
	require.NoError(t, src.Start(0))

	out := make([]float64, 5)
	src.Process(nil, out)
	assert.Equal(t, []float64{1, 1, 1, 0, 0}, out)
	assert.False(t, src.Playing())
}

func TestBufferSourceStopAndErrors(t *testing.T) {
	_, err := NewBufferSource(nil, true)
	assert.ErrorIs(t, err, ErrNoBuffer)

	src, err := NewBufferSource(&Clip{Samples: []float64{1}, SampleRate: 1}, true)
	require.NoError(t, err)
	assert.ErrorIs(t, src.Stop(), ErrNotStarted)
	assert.ErrorIs(t, src.Start(-1), ErrInvalidOffset)
	require.NoError(t, src.Start(0))
	require.NoError(t, src.Stop())

	out := []float64{9, 9}
	src.Process(nil, out)
	assert.Equal(t, []float64{0, 0}, out)
}

func TestClipDuration(t *testing.T) {
	clip := &Clip{Samples: make([]float64, 96000), SampleRate: 48000}
	assert.InDelta(t, 2.0, clip.Duration(), 1e-12)
	var nilClip *Clip
	assert.Zero(t, nilClip.Duration())
}

func TestHighpassAttenuatesBelowCutoff(t *testing.T) {
	f := NewBiquadFilter(48000)
	f.SetType(Highpass)
	f.SetFrequency(5000)

	assert.Less(t, f.MagnitudeAt(200), 0.01)
	assert.InDelta(t, 1.0, f.MagnitudeAt(20000), 0.05)
	assert.Equal(t, "highpass", f.Type().String())
	assert.Equal(t, 5000.0, f.Frequency())
}

func TestBiquadMagnitudeResponses(t *testing.T) {
	tests := []struct {
		typ    FilterType
		freq   float64
		want   float64
		within float64
	}{
		{Lowpass, 50, 1, 0.01},
		{Lowpass, 1000, 1, 0.01}, // gain equals Q at the cutoff
		{Lowpass, 20000, 0, 0.01},
		{Bandpass, 1000, 1, 1e-9},
		{Bandpass, 20, 0, 0.1},
		{Bandpass, 20000, 0, 0.1},
		{Notch, 1000, 0, 1e-9},
		{Notch, 20, 1, 0.01},
		{Notch, 20000, 1, 0.05},
		{Allpass, 20, 1, 1e-9},
		{Allpass, 1000, 1, 1e-9},
		{Allpass, 20000, 1, 1e-9},
	}
	for _, tt := range tests {
		f := NewBiquadFilter(48000)
		f.SetType(tt.typ)
		f.SetFrequency(1000)
		assert.InDelta(t, tt.want, f.MagnitudeAt(tt.freq), tt.within, "%s at %v Hz", tt.typ, tt.freq)
	}
}

func TestBiquadFilterProcessesLowTone(t *testing.T) {
	const rate = 48000
	in := sine(100, rate, 4800)
	out := make([]float64, len(in))

	f := NewBiquadFilter(rate)
	f.SetType(Highpass)
	f.SetFrequency(5000)
	f.Process(in, out)

	var peak float64
	for _, v := range out[2400:] {
		peak = math.Max(peak, math.Abs(v))
	}
	assert.Less(t, peak, 0.01)
}

func TestBiquadFilterClampsFrequencyForDesign(t *testing.T) {
	f := NewBiquadFilter(48000)
	f.SetFrequency(1e9)
	assert.Equal(t, 1e9, f.Frequency(), "set value is kept")
	assert.False(t, math.IsNaN(f.MagnitudeAt(1000)))
}

func TestAnalyserRejectsBadParameters(t *testing.T) {
	_, err := NewAnalyser(1000, 0.8)
	assert.ErrorIs(t, err, ErrInvalidFFTSize)
	_, err = NewAnalyser(2048, 1.5)
	assert.ErrorIs(t, err, ErrInvalidSmoothing)

	a, err := NewAnalyser(2048, 0.8)
	require.NoError(t, err)
	assert.Equal(t, 1024, a.FrequencyBinCount())
	assert.ErrorIs(t, a.SetDecibelRange(0, -10), ErrInvalidDecibels)
}

func TestAnalyserTimeDomainBytes(t *testing.T) {
	a, err := NewAnalyser(32, 0)
	require.NoError(t, err)

	in := make([]float64, 32)
	for i := range in {
		in[i] = 0.5
	}
	in[0] = -1
	a.Process(in, make([]float64, 32))

	dst := make([]byte, 16)
	a.ByteTimeDomainData(dst)
	assert.Equal(t, byte(0), dst[0])
	assert.Equal(t, byte(192), dst[1])
}

func TestAnalyserTimeDomainSilenceBeforeInput(t *testing.T) {
	a, err := NewAnalyser(64, 0.8)
	require.NoError(t, err)
	dst := make([]byte, 32)
	a.ByteTimeDomainData(dst)
	for _, v := range dst {
		require.Equal(t, byte(128), v)
	}
}

func TestAnalyserSpectrumPeaksAtToneBin(t *testing.T) {
	const (
		rate    = 48000.0
		fftSize = 2048
	)
	a, err := NewAnalyser(fftSize, 0)
	require.NoError(t, err)
	require.NoError(t, a.SetDecibelRange(-140, 0))

	// 3000 Hz lands exactly on bin 128.
	in := sine(3000, rate, fftSize)
	a.Process(in, make([]float64, fftSize))

	freq := make([]byte, a.FrequencyBinCount())
	a.ByteFrequencyData(freq)

	peak := 0
	for i, v := range freq {
		if v > freq[peak] {
			peak = i
		}
	}
	assert.Equal(t, 128, peak)
	assert.Greater(t, freq[128], freq[600])
}

func TestAnalyserSmoothingOnlyAppliesToNewData(t *testing.T) {
	a, err := NewAnalyser(256, 0.5)
	require.NoError(t, err)
	a.Process(sine(1875, 48000, 256), make([]float64, 256))

	first := make([]float64, 128)
	second := make([]float64, 128)
	a.FloatFrequencyData(first)
	a.FloatFrequencyData(second)
	assert.Equal(t, first, second)

	a.Process(sine(1875, 48000, 256), make([]float64, 256))
	a.FloatFrequencyData(second)
	assert.Greater(t, second[10], first[10])
}

func TestGainAndWaveShaper(t *testing.T) {
	g := NewGain()
	assert.Equal(t, 1.0, g.Gain())
	g.SetGain(0.5)
	out := make([]float64, 2)
	g.Process([]float64{1, -1}, out)
	assert.Equal(t, []float64{0.5, -0.5}, out)

	ws := NewWaveShaper([]float64{-1, 0, 1})
	res := make([]float64, 3)
	ws.Process([]float64{-2, 0.5, 2}, res)
	assert.Equal(t, []float64{-1, 0.5, 1}, res)

	ws.SetCurve(nil)
	ws.Process([]float64{0.3, 0.1, 0.2}, res)
	assert.Equal(t, []float64{0.3, 0.1, 0.2}, res)
}

func TestConvolverAppliesImpulse(t *testing.T) {
	_, err := NewConvolver(nil)
	assert.ErrorIs(t, err, ErrEmptyImpulse)

	c, err := NewConvolver([]float64{1, 0.5})
	require.NoError(t, err)
	out := make([]float64, 4)
	c.Process([]float64{1, 0, 0, 2}, out)
	assert.Equal(t, []float64{1, 0.5, 0, 2}, out)
}

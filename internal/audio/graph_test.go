package audio

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// constNode emits a constant and counts how often it is processed.
type constNode struct {
	value float64
	calls int
}

func (c *constNode) Name() string { return "const" }

func (c *constNode) Process(_, out []float64) {
	c.calls++
	for i := range out {
		out[i] = c.value
	}
}

func newTestGraph(t *testing.T) *Graph {
	t.Helper()
	g, err := NewGraph(48000)
	require.NoError(t, err)
	return g
}

func TestNewGraphRejectsBadSampleRate(t *testing.T) {
	for _, rate := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := NewGraph(rate)
		assert.ErrorIs(t, err, ErrInvalidSampleRate)
	}
}

func TestRenderSilentWithoutConnections(t *testing.T) {
	g := newTestGraph(t)
	out := make([]float64, 300)
	for i := range out {
		out[i] = 1
	}
	g.Render(out)
	for _, v := range out {
		require.Zero(t, v)
	}
}

func TestRenderSumsInputsAndAdvancesClock(t *testing.T) {
	g := newTestGraph(t)
	a := &constNode{value: 0.25}
	b := &constNode{value: 0.5}
	require.NoError(t, g.Connect(a, g.Destination()))
	require.NoError(t, g.Connect(b, g.Destination()))

	out := make([]float64, renderQuantum*2)
	g.Render(out)
	for _, v := range out {
		require.InDelta(t, 0.75, v, 1e-12)
	}
	assert.InDelta(t, float64(renderQuantum*2)/48000, g.CurrentTime(), 1e-12)
}

func TestFanOutProcessesNodeOncePerQuantum(t *testing.T) {
	g := newTestGraph(t)
	src := &constNode{value: 1}
	gain := NewGain()
	require.NoError(t, g.Connect(src, gain))
	require.NoError(t, g.Connect(src, g.Destination()))
	require.NoError(t, g.Connect(gain, g.Destination()))

	g.Render(make([]float64, renderQuantum))
	assert.Equal(t, 1, src.calls)
}

func TestConnectRejectsInvalidEdges(t *testing.T) {
	g := newTestGraph(t)
	a := NewGain()
	b := NewGain()
	clip := &Clip{Samples: []float64{1}, SampleRate: 48000}
	src, err := NewBufferSource(clip, false)
	require.NoError(t, err)

	assert.ErrorIs(t, g.Connect(a, a), ErrInvalidConnection)
	assert.ErrorIs(t, g.Connect(nil, a), ErrInvalidConnection)
	assert.ErrorIs(t, g.Connect(a, src), ErrInvalidConnection)
	assert.ErrorIs(t, g.Connect(g.Destination(), a), ErrInvalidConnection)

	require.NoError(t, g.Connect(a, b))
	assert.ErrorIs(t, g.Connect(b, a), ErrInvalidConnection)
	require.NoError(t, g.Connect(a, b), "duplicate connection is a no-op")
	assert.Len(t, g.Inputs(b), 1)
}

func TestDisconnectIsIdempotent(t *testing.T) {
	g := newTestGraph(t)
	a := &constNode{value: 1}
	require.NoError(t, g.Connect(a, g.Destination()))

	g.Disconnect(a)
	g.Disconnect(a)
	g.Disconnect(nil)
	assert.Empty(t, g.Inputs(g.Destination()))

	out := make([]float64, 16)
	g.Render(out)
	assert.Zero(t, out[0])
}

func TestReadWritesInterleavedStereoFloat32(t *testing.T) {
	g := newTestGraph(t)
	require.NoError(t, g.Connect(&constNode{value: 2}, g.Destination()))

	p := make([]byte, 8*4+3)
	n, err := g.Read(p)
	require.NoError(t, err)
	require.Equal(t, 32, n)
	for i := 0; i < n; i += 4 {
		v := math.Float32frombits(binary.LittleEndian.Uint32(p[i:]))
		assert.Equal(t, float32(1), v, "output clamps to full scale")
	}
}

func TestReadShorterThanFrameRendersNothing(t *testing.T) {
	g := newTestGraph(t)
	node := &constNode{value: 0.5}
	require.NoError(t, g.Connect(node, g.Destination()))

	p := []byte{7, 7, 7, 7, 7, 7, 7}
	n, err := g.Read(p)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, node.calls)
	assert.Zero(t, g.CurrentTime())
	assert.Equal(t, []byte{7, 7, 7, 7, 7, 7, 7}, p)
}

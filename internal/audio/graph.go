// Package audio implements a small pull-based audio processing graph: buffer
// sources, filters, analysers and a destination that feeds the sound card.
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
)

// renderQuantum is the number of frames rendered per graph pull.
const renderQuantum = 128

var (
	ErrInvalidConnection = errors.New("audio: invalid connection")
	ErrInvalidSampleRate = errors.New("audio: invalid sample rate")
)

// Node is one stage of the graph. Process receives the sum of all inputs
// for one render quantum and writes its output; len(in) == len(out).
type Node interface {
	Name() string
	Process(in, out []float64)
}

// inputless is implemented by nodes that cannot be the target of a connection.
type inputless interface {
	NumberOfInputs() int
}

// Graph wires nodes together and renders them on demand. Rendering pulls from
// the destination, so only nodes with a path to it are processed. Every node
// is processed at most once per quantum even when it fans out.
type Graph struct {
	mu         sync.Mutex
	sampleRate float64
	dest       *Destination
	inputs     map[Node][]Node
	frames     int64

	cache map[Node][]float64
	bufs  [][]float64
	used  int
	tail  []float64
	mono  []float64
}

// NewGraph creates an empty graph running at sampleRate.
func NewGraph(sampleRate float64) (*Graph, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}
	return &Graph{
		sampleRate: sampleRate,
		dest:       &Destination{name: "destination"},
		inputs:     make(map[Node][]Node),
		cache:      make(map[Node][]float64),
	}, nil
}

// SampleRate returns the graph's sampling rate in Hz.
func (g *Graph) SampleRate() float64 { return g.sampleRate }

// Destination returns the node whose output is sent to the sound card.
func (g *Graph) Destination() Node { return g.dest }

// CurrentTime returns the number of seconds rendered so far.
func (g *Graph) CurrentTime() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return float64(g.frames) / g.sampleRate
}

// Connect routes the output of from into to. Connecting the same pair twice
// is a no-op.
func (g *Graph) Connect(from, to Node) error {
	if from == nil || to == nil {
		return fmt.Errorf("%w: nil node", ErrInvalidConnection)
	}
	if from == to {
		return fmt.Errorf("%w: %s to itself", ErrInvalidConnection, from.Name())
	}
	if n, ok := to.(inputless); ok && n.NumberOfInputs() == 0 {
		return fmt.Errorf("%w: %s has no inputs", ErrInvalidConnection, to.Name())
	}
	if from == Node(g.dest) {
		return fmt.Errorf("%w: destination has no outputs", ErrInvalidConnection)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	for _, in := range g.inputs[to] {
		if in == from {
			return nil
		}
	}
	if g.pullsFrom(from, to) {
		return fmt.Errorf("%w: %s -> %s would create a cycle", ErrInvalidConnection, from.Name(), to.Name())
	}
	g.inputs[to] = append(g.inputs[to], from)
	return nil
}

// pullsFrom reports whether n transitively takes input from upstream.
func (g *Graph) pullsFrom(n, upstream Node) bool {
	seen := make(map[Node]bool)
	stack := []Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == upstream {
			return true
		}
		if seen[cur] {
			continue
		}
		seen[cur] = true
		stack = append(stack, g.inputs[cur]...)
	}
	return false
}

// Disconnect removes every outgoing connection of n. It is safe to call on a
// node that is not connected.
func (g *Graph) Disconnect(n Node) {
	if n == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	for to, ins := range g.inputs {
		kept := ins[:0]
		for _, in := range ins {
			if in != n {
				kept = append(kept, in)
			}
		}
		if len(kept) == 0 {
			delete(g.inputs, to)
			continue
		}
		g.inputs[to] = kept
	}
}

// Inputs returns the nodes currently connected into n.
func (g *Graph) Inputs(n Node) []Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Node(nil), g.inputs[n]...)
}

// Render fills out with mono destination samples and advances the clock.
func (g *Graph) Render(out []float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.render(out)
}

func (g *Graph) render(out []float64) {
	for len(out) > 0 {
		if len(g.tail) == 0 {
			g.tail = g.renderQuantum()
			g.frames += renderQuantum
		}
		n := copy(out, g.tail)
		out = out[n:]
		g.tail = g.tail[n:]
	}
}

func (g *Graph) renderQuantum() []float64 {
	clear(g.cache)
	g.used = 0
	return g.pull(g.dest)
}

func (g *Graph) pull(n Node) []float64 {
	if buf, ok := g.cache[n]; ok {
		return buf
	}
	in := g.scratch()
	for _, src := range g.inputs[n] {
		for i, v := range g.pull(src) {
			in[i] += v
		}
	}
	out := g.scratch()
	n.Process(in, out)
	g.cache[n] = out
	return out
}

func (g *Graph) scratch() []float64 {
	if g.used == len(g.bufs) {
		g.bufs = append(g.bufs, make([]float64, renderQuantum))
	}
	buf := g.bufs[g.used]
	g.used++
	clear(buf)
	return buf
}

// Read renders interleaved stereo float32 little-endian frames into p. It
// lets the graph be handed straight to an oto player.
func (g *Graph) Read(p []byte) (int, error) {
	const frameSize = outputChannels * 4
	frames := len(p) / frameSize
	// oto asks for whole frames; a shorter p renders nothing and reads as
	// (0, nil) rather than splitting a frame across calls.
	if frames == 0 {
		return 0, nil
	}

	g.mu.Lock()
	if cap(g.mono) < frames {
		g.mono = make([]float64, frames)
	}
	mono := g.mono[:frames]
	g.render(mono)
	g.mu.Unlock()

	for i, v := range mono {
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		bits := math.Float32bits(float32(v))
		off := i * frameSize
		for ch := range outputChannels {
			binary.LittleEndian.PutUint32(p[off+ch*4:], bits)
		}
	}
	return frames * frameSize, nil
}

// Destination is the terminal node of the graph.
type Destination struct {
	name string
}

func (d *Destination) Name() string { return d.name }

func (d *Destination) Process(in, out []float64) { copy(out, in) }

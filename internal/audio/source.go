package audio

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

var (
	ErrNoBuffer       = errors.New("audio: source has no buffer")
	ErrAlreadyStarted = errors.New("audio: source already started")
	ErrNotStarted     = errors.New("audio: source not started")
	ErrInvalidOffset  = errors.New("audio: invalid start offset")
)

// Clip is a decoded mono sound held in memory.
type Clip struct {
	Samples    []float64
	SampleRate float64
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 {
	if c == nil || c.SampleRate <= 0 {
		return 0
	}
	return float64(len(c.Samples)) / c.SampleRate
}

// BufferSource plays a Clip. Like a Web Audio buffer source it can only be
// started once; playing again needs a new source.
type BufferSource struct {
	mu      sync.Mutex
	clip    *Clip
	loop    bool
	started bool
	playing bool
	pos     int
}

// NewBufferSource creates a source for clip.
func NewBufferSource(clip *Clip, loop bool) (*BufferSource, error) {
	if clip == nil || len(clip.Samples) == 0 {
		return nil, ErrNoBuffer
	}
	return &BufferSource{clip: clip, loop: loop}, nil
}

func (s *BufferSource) Name() string { return "buffer source" }

// NumberOfInputs reports that nothing can be connected into a source.
func (s *BufferSource) NumberOfInputs() int { return 0 }

// Start begins playback at offset seconds into the clip. Offsets past the end
// wrap when looping.
func (s *BufferSource) Start(offset float64) error {
	if offset < 0 || math.IsNaN(offset) || math.IsInf(offset, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidOffset, offset)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}
	n := len(s.clip.Samples)
	pos := int(offset * s.clip.SampleRate)
	if pos >= n {
		if s.loop {
			pos %= n
		} else {
			pos = n
		}
	}
	s.pos = pos
	s.started = true
	s.playing = true
	return nil
}

// Stop halts playback. The source cannot be restarted.
func (s *BufferSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return ErrNotStarted
	}
	s.playing = false
	return nil
}

// Playing reports whether the source is currently producing sound.
func (s *BufferSource) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Position returns the playhead in seconds.
func (s *BufferSource) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return float64(s.pos) / s.clip.SampleRate
}

func (s *BufferSource) Process(_, out []float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.playing {
		clear(out)
		return
	}

	samples := s.clip.Samples
	for i := range out {
		if s.pos >= len(samples) {
			if !s.loop {
				clear(out[i:])
				s.playing = false
				return
			}
			s.pos = 0
		}
		out[i] = samples[s.pos]
		s.pos++
	}
}

// Package loader decodes sound files into in-memory clips ready to be played
// by the audio graph.
package loader

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/olivier-w/climpviz/internal/audio"
)

// Sound names one file to load.
type Sound struct {
	Name string
	Path string
}

// Loader decodes sounds and converts them to the graph's sample rate.
type Loader struct {
	sampleRate float64
	logger     *zap.Logger
}

// New creates a loader producing clips at sampleRate.
func New(sampleRate float64, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{sampleRate: sampleRate, logger: logger}
}

// Load decodes all sounds concurrently. It fails as a whole if any sound
// fails.
func (l *Loader) Load(ctx context.Context, sounds []Sound) (map[string]*audio.Clip, error) {
	if l.sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %v", audio.ErrInvalidSampleRate, l.sampleRate)
	}

	var (
		mu    sync.Mutex
		clips = make(map[string]*audio.Clip, len(sounds))
	)
	g, ctx := errgroup.WithContext(ctx)
	for _, s := range sounds {
		g.Go(func() error {
			clip, err := l.loadOne(ctx, s)
			if err != nil {
				return fmt.Errorf("loading %s (%s): %w", s.Name, s.Path, err)
			}
			mu.Lock()
			clips[s.Name] = clip
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return clips, nil
}

// LoadAsync runs Load in the background and hands the result to done.
func (l *Loader) LoadAsync(ctx context.Context, sounds []Sound, done func(map[string]*audio.Clip, error)) {
	go func() {
		done(l.Load(ctx, sounds))
	}()
}

func (l *Loader) loadOne(ctx context.Context, s Sound) (*audio.Clip, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := decodeFile(s.Path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if data.channels < 1 || data.sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", ErrInvalidAudio, data.channels, data.sampleRate)
	}

	mono := mixDown(data.samples, data.channels)
	if len(mono) == 0 {
		return nil, fmt.Errorf("%w: no samples", ErrInvalidAudio)
	}
	samples := resampleLinear(mono, float64(data.sampleRate), l.sampleRate)

	l.logger.Info("sound loaded",
		zap.String("name", s.Name),
		zap.String("path", s.Path),
		zap.Int("channels", data.channels),
		zap.Int("sourceRate", data.sampleRate),
		zap.Int("frames", len(samples)),
	)
	return &audio.Clip{Samples: samples, SampleRate: l.sampleRate}, nil
}

// mixDown averages interleaved channels into one.
func mixDown(interleaved []float64, channels int) []float64 {
	if channels == 1 {
		return interleaved
	}
	frames := len(interleaved) / channels
	out := make([]float64, frames)
	for i := range frames {
		var sum float64
		for ch := range channels {
			sum += interleaved[i*channels+ch]
		}
		out[i] = sum / float64(channels)
	}
	return out
}

// resampleLinear converts between sample rates by linear interpolation.
func resampleLinear(in []float64, from, to float64) []float64 {
	if from == to || len(in) == 0 {
		return in
	}
	n := int(float64(len(in)) * to / from)
	if n < 1 {
		n = 1
	}
	out := make([]float64, n)
	step := from / to
	last := len(in) - 1
	for i := range out {
		pos := float64(i) * step
		k := int(pos)
		if k >= last {
			out[i] = in[last]
			continue
		}
		frac := pos - float64(k)
		out[i] = in[k] + (in[k+1]-in[k])*frac
	}
	return out
}

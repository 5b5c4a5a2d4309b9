package audio

import (
	"fmt"
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"
	"go.uber.org/zap"
)

const outputChannels = 2

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
	otoRate      int
)

func initOto(sampleRate int) (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: outputChannels,
			Format:       oto.FormatFloat32LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
			otoRate = sampleRate
		}
	})
	if otoInitErr == nil && otoRate != sampleRate {
		return nil, fmt.Errorf("%w: output already open at %d Hz", ErrInvalidSampleRate, otoRate)
	}
	return globalOtoCtx, otoInitErr
}

// Output streams a graph to the sound card. The oto context is process-wide,
// so every Output must use the same sample rate.
type Output struct {
	player *oto.Player
	logger *zap.Logger
	mu     sync.Mutex
	closed bool
}

// NewOutput opens the sound card and starts pulling from src, normally a
// *Graph.
func NewOutput(src io.Reader, sampleRate int, logger *zap.Logger) (*Output, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, err := initOto(sampleRate)
	if err != nil {
		return nil, fmt.Errorf("opening audio output: %w", err)
	}

	o := &Output{
		player: ctx.NewPlayer(src),
		logger: logger,
	}
	o.player.Play()
	logger.Info("audio output started", zap.Int("sampleRate", sampleRate))
	return o, nil
}

// Close stops the output. It is safe to call more than once.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true
	o.player.Pause()
	if err := o.player.Close(); err != nil {
		o.logger.Warn("closing audio player", zap.Error(err))
		return err
	}
	o.logger.Info("audio output closed")
	return nil
}

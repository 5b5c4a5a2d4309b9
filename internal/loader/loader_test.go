package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olivier-w/climpviz/internal/audio"
)

func writeWAV(t *testing.T, path string, rate, channels int, data []int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
}

func TestLoadDecodesStereoWAVToMonoAtGraphRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	// 4 stereo frames: left 16384 (0.5), right 0.
	writeWAV(t, path, 24000, 2, []int{16384, 0, 16384, 0, 16384, 0, 16384, 0})

	clips, err := New(48000, nil).Load(context.Background(), []Sound{{Name: "buffer", Path: path}})
	require.NoError(t, err)
	require.Contains(t, clips, "buffer")

	clip := clips["buffer"]
	assert.Equal(t, 48000.0, clip.SampleRate)
	assert.Len(t, clip.Samples, 8)
	for _, v := range clip.Samples {
		assert.InDelta(t, 0.25, v, 1e-9)
	}
}

func TestLoadRejectsUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.aiff")
	require.NoError(t, os.WriteFile(path, []byte("FORM"), 0o644))

	_, err := New(48000, nil).Load(context.Background(), []Sound{{Name: "buffer", Path: path}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), "buffer")
}

func TestLoadRejectsInvalidWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.wav")
	require.NoError(t, os.WriteFile(path, []byte("not a wav file"), 0o644))

	_, err := New(48000, nil).Load(context.Background(), []Sound{{Name: "buffer", Path: path}})
	assert.ErrorIs(t, err, ErrInvalidAudio)
}

func TestLoadRejectsBadSampleRate(t *testing.T) {
	_, err := New(0, nil).Load(context.Background(), nil)
	assert.ErrorIs(t, err, audio.ErrInvalidSampleRate)
}

func TestLoadHonorsCancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	writeWAV(t, path, 48000, 1, []int{1, 2, 3})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(48000, nil).Load(ctx, []Sound{{Name: "buffer", Path: path}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadAsyncCallsDone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	writeWAV(t, path, 48000, 1, []int{0, 8192, -8192})

	done := make(chan map[string]*audio.Clip, 1)
	New(48000, nil).LoadAsync(context.Background(), []Sound{{Name: "buffer", Path: path}},
		func(clips map[string]*audio.Clip, err error) {
			assert.NoError(t, err)
			done <- clips
		})

	select {
	case clips := <-done:
		require.Contains(t, clips, "buffer")
		assert.InDeltaSlice(t, []float64{0, 0.25, -0.25}, clips["buffer"].Samples, 1e-9)
	case <-time.After(5 * time.Second):
		t.Fatal("LoadAsync never completed")
	}
}

func TestResampleLinearInterpolates(t *testing.T) {
	out := resampleLinear([]float64{0, 1}, 1, 2)
	assert.Equal(t, []float64{0, 0.5, 1, 1}, out)

	same := []float64{1, 2, 3}
	assert.Equal(t, same, resampleLinear(same, 44100, 44100))
}

func TestMixDownAverages(t *testing.T) {
	assert.Equal(t, []float64{0.5, 0}, mixDown([]float64{1, 0, 0.5, -0.5}, 2))
}

func TestReadTitleFallsBackToFileName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yanny-laurel-single.wav")
	writeWAV(t, path, 48000, 1, []int{0})
	assert.Equal(t, "yanny-laurel-single", ReadTitle(path))
	assert.Equal(t, "missing", ReadTitle("/nonexistent/missing.mp3"))
}

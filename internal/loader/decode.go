package loader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrInvalidAudio      = errors.New("invalid audio data")
)

// pcm is a fully decoded file: interleaved samples in [-1, 1].
type pcm struct {
	samples    []float64
	channels   int
	sampleRate int
}

// decodeFile detects format by file extension and decodes the whole file.
func decodeFile(path string) (pcm, error) {
	f, err := os.Open(path)
	if err != nil {
		return pcm{}, err
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".wav":
		return decodeWAV(f)
	case ".mp3":
		return decodeMP3(f)
	case ".flac":
		return decodeFLAC(f)
	case ".ogg":
		return decodeOGG(f)
	default:
		return pcm{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// --- WAV decoder ---

func decodeWAV(r io.ReadSeeker) (pcm, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return pcm{}, fmt.Errorf("%w: invalid WAV file", ErrInvalidAudio)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return pcm{}, fmt.Errorf("reading WAV PCM data: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels < 1 {
		return pcm{}, fmt.Errorf("%w: missing WAV format", ErrInvalidAudio)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = int(dec.BitDepth)
	}
	out := make([]float64, len(buf.Data))
	switch bitDepth {
	case 8:
		// 8-bit WAV is unsigned
		for i, v := range buf.Data {
			out[i] = float64(v-128) / 128
		}
	case 16, 24, 32:
		scale := float64(int64(1) << (bitDepth - 1))
		for i, v := range buf.Data {
			out[i] = float64(v) / scale
		}
	default:
		return pcm{}, fmt.Errorf("%w: %d-bit WAV", ErrUnsupportedFormat, bitDepth)
	}

	return pcm{
		samples:    out,
		channels:   buf.Format.NumChannels,
		sampleRate: buf.Format.SampleRate,
	}, nil
}

// --- MP3 decoder ---

func decodeMP3(r io.Reader) (pcm, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return pcm{}, fmt.Errorf("decoding MP3: %w", err)
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return pcm{}, fmt.Errorf("decoding MP3: %w", err)
	}

	// go-mp3 always produces 16-bit stereo.
	out := make([]float64, len(raw)/2)
	for i := range out {
		out[i] = float64(int16(binary.LittleEndian.Uint16(raw[i*2:]))) / 32768
	}
	return pcm{samples: out, channels: 2, sampleRate: dec.SampleRate()}, nil
}

// --- FLAC decoder ---

func decodeFLAC(r io.Reader) (pcm, error) {
	stream, err := flac.New(r)
	if err != nil {
		return pcm{}, fmt.Errorf("decoding FLAC: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	channels := int(info.NChannels)
	scale := float64(int64(1) << (info.BitsPerSample - 1))
	out := make([]float64, 0, int(info.NSamples)*channels)

	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return pcm{}, fmt.Errorf("decoding FLAC frame: %w", err)
		}
		n := int(frame.Subframes[0].NSamples)
		for i := range n {
			for ch := range channels {
				out = append(out, float64(frame.Subframes[ch].Samples[i])/scale)
			}
		}
	}

	return pcm{samples: out, channels: channels, sampleRate: int(info.SampleRate)}, nil
}

// --- OGG Vorbis decoder ---

func decodeOGG(r io.Reader) (pcm, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return pcm{}, fmt.Errorf("decoding OGG: %w", err)
	}

	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v)
	}
	return pcm{samples: out, channels: format.Channels, sampleRate: format.SampleRate}, nil
}

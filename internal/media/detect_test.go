package media

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestIsSupportedExtIgnoresCase(t *testing.T) {
	for _, ext := range []string{".wav", ".WAV", ".mp3", ".flac", ".Ogg"} {
		if !IsSupportedExt(ext) {
			t.Fatalf("expected %s to be supported", ext)
		}
	}
	for _, ext := range []string{".aac", ".m4a", ""} {
		if IsSupportedExt(ext) {
			t.Fatalf("expected %q to be unsupported", ext)
		}
	}
}

func TestSupportedExtsListIsSorted(t *testing.T) {
	if got, want := SupportedExtsList(), ".flac, .mp3, .ogg, .wav"; got != want {
		t.Fatalf("SupportedExtsList() = %q, want %q", got, want)
	}
}

func TestCheckSound(t *testing.T) {
	dir := t.TempDir()
	wav := filepath.Join(dir, "tone.wav")
	if err := os.WriteFile(wav, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CheckSound(wav); err != nil {
		t.Fatalf("CheckSound(%q) = %v", wav, err)
	}
	if err := CheckSound(filepath.Join(dir, "tone.m4a")); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if err := CheckSound(filepath.Join(dir, "missing.wav")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	sub := filepath.Join(dir, "clips.wav")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := CheckSound(sub); err == nil {
		t.Fatal("expected error for directory")
	}
}

// Package media recognises the sound files the loader can decode.
package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

var ErrUnsupported = errors.New("unsupported sound format")

var audioExts = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".ogg":  true,
}

// IsSupportedExt returns true if the extension is a decodable sound format.
func IsSupportedExt(ext string) bool {
	return audioExts[strings.ToLower(ext)]
}

// SupportedExtsList returns a human-readable list of decodable sound formats.
func SupportedExtsList() string {
	exts := make([]string, 0, len(audioExts))
	for ext := range audioExts {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return strings.Join(exts, ", ")
}

// CheckSound verifies that path is an existing regular file in a supported
// format.
func CheckSound(path string) error {
	ext := filepath.Ext(path)
	if !IsSupportedExt(ext) {
		return fmt.Errorf("%w %q (supported: %s)", ErrUnsupported, ext, SupportedExtsList())
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

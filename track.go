package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// Cover is a displayable image reference for a track.
// Embedded art (Data) wins over the placeholder file at Path.
type Cover struct {
	Path     string
	Data     []byte
	MIMEType string
}

// Embedded reports whether the cover came from the track's own tags
func (c Cover) Embedded() bool {
	return len(c.Data) > 0
}

// Bytes returns the raw image bytes, reading the placeholder file when no
// embedded art was materialized.
func (c Cover) Bytes() ([]byte, error) {
	if c.Embedded() {
		return c.Data, nil
	}
	if c.Path == "" {
		return nil, fmt.Errorf("cover has no data")
	}
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cover file: %w", err)
	}
	return data, nil
}

// Track is a single playable entry. Only Favorited changes after loading.
type Track struct {
	Name      string
	Artist    string
	Cover     Cover
	Source    string
	Favorited bool
}

// Catalog is the fixed, index-addressed list of tracks for a session
type Catalog []Track

// AssetLayout maps a 1-based track number onto the static file layout
type AssetLayout struct {
	Dir          string
	AudioPattern string // e.g. "mp3/%d.mp3"
	CoverPattern string // e.g. "img/%d.jpg"
}

// Source returns the audio path for track number i
func (l AssetLayout) Source(i int) string {
	return filepath.Join(l.Dir, fmt.Sprintf(l.AudioPattern, i))
}

// CoverPath returns the placeholder cover path for track number i
func (l AssetLayout) CoverPath(i int) string {
	return filepath.Join(l.Dir, fmt.Sprintf(l.CoverPattern, i))
}

// placeholderTrack synthesizes the default entry shown before (or instead of)
// tag metadata.
func placeholderTrack(layout AssetLayout, i int) Track {
	return Track{
		Name:   fmt.Sprintf("Track %d", i),
		Artist: fmt.Sprintf("Artist %d", i),
		Cover:  Cover{Path: layout.CoverPath(i)},
		Source: layout.Source(i),
	}
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dhowden/tag"
)

// Picture is embedded cover art from a tag bundle
type Picture struct {
	Format string // MIME type, e.g. "image/jpeg"
	Data   []byte
}

// TagBundle holds the subset of tag metadata the player displays.
// Empty fields mean the tag was absent.
type TagBundle struct {
	Title   string
	Artist  string
	Picture *Picture
}

// TagReader reads tag metadata for an audio source
type TagReader interface {
	ReadTags(ctx context.Context, source string) (TagBundle, error)
}

// fileTagReader reads ID3/MP4/FLAC/Ogg tags from local files
type fileTagReader struct{}

// NewTagReader creates the tag reader backed by dhowden/tag
func NewTagReader() TagReader {
	return fileTagReader{}
}

func (fileTagReader) ReadTags(ctx context.Context, source string) (TagBundle, error) {
	if err := ctx.Err(); err != nil {
		return TagBundle{}, err
	}

	f, err := os.Open(source)
	if err != nil {
		return TagBundle{}, fmt.Errorf("failed to open %s: %w", source, err)
	}
	defer f.Close()

	metadata, err := tag.ReadFrom(f)
	if err != nil {
		return TagBundle{}, fmt.Errorf("failed to read tags from %s: %w", source, err)
	}

	bundle := TagBundle{
		Title:  metadata.Title(),
		Artist: metadata.Artist(),
	}
	if pic := metadata.Picture(); pic != nil && len(pic.Data) > 0 {
		format := pic.MIMEType
		if format == "" && pic.Ext != "" {
			format = "image/" + pic.Ext
		}
		bundle.Picture = &Picture{Format: format, Data: pic.Data}
	}
	return bundle, nil
}

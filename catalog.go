package main

import (
	"context"

	"github.com/samber/lo"
	"github.com/sourcegraph/conc/iter"
	"go.uber.org/zap"
)

// CatalogLoader builds the ordered track catalog, enriching placeholder
// entries with tag metadata.
type CatalogLoader struct {
	layout      AssetLayout
	reader      TagReader
	logger      *zap.Logger
	concurrency int
}

// NewCatalogLoader creates a loader. concurrency bounds parallel tag reads
// (values below 1 mean one at a time).
func NewCatalogLoader(layout AssetLayout, reader TagReader, logger *zap.Logger, concurrency int) *CatalogLoader {
	if concurrency < 1 {
		concurrency = 1
	}
	return &CatalogLoader{
		layout:      layout,
		reader:      reader,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Load returns count tracks numbered 1..count. Tag reads run concurrently,
// but the result is always ordered by track number. A failed read keeps the
// placeholder for that track only.
func (l *CatalogLoader) Load(ctx context.Context, count int) Catalog {
	if count <= 0 {
		return Catalog{}
	}

	numbers := make([]int, count)
	for i := range numbers {
		numbers[i] = i + 1
	}

	mapper := iter.Mapper[int, Track]{MaxGoroutines: l.concurrency}
	tracks := mapper.Map(numbers, func(n *int) Track {
		return l.loadTrack(ctx, *n)
	})
	return Catalog(tracks)
}

func (l *CatalogLoader) loadTrack(ctx context.Context, i int) Track {
	track := placeholderTrack(l.layout, i)

	bundle, err := l.reader.ReadTags(ctx, track.Source)
	if err != nil {
		l.logger.Warn("failed to load metadata",
			zap.String("source", track.Source),
			zap.Error(err))
		return track
	}

	return applyTags(track, bundle)
}

// applyTags overrides placeholder fields with non-empty tag values
func applyTags(track Track, bundle TagBundle) Track {
	track.Name = lo.CoalesceOrEmpty(bundle.Title, track.Name)
	track.Artist = lo.CoalesceOrEmpty(bundle.Artist, track.Artist)
	if bundle.Picture != nil && len(bundle.Picture.Data) > 0 {
		track.Cover = Cover{
			Path:     track.Cover.Path,
			Data:     bundle.Picture.Data,
			MIMEType: bundle.Picture.Format,
		}
	}
	return track
}

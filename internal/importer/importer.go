// Package importer is the one-shot bulk path: it loads a full staged
// corpus and writes it through the same normalization, ordering and
// batching logic as the incremental sync, bypassing the diff engine.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/meeeeeooooowwwwwww/updates/internal/domain"
	"github.com/meeeeeooooowwwwwww/updates/internal/service"
)

// corpusRecord is one staged video. Only identity fields are read;
// ordering and publish_date are reassigned deterministically so the
// import is reproducible given the same input order.
type corpusRecord struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Thumbnail string `json:"thumbnail"`
	Hint      string `json:"published_hint,omitempty"`
}

// corpusEnvelope is the legacy staging shape with a metadata wrapper.
type corpusEnvelope struct {
	LastUpdated string         `json:"last_updated"`
	Videos      []corpusRecord `json:"videos"`
}

type Importer struct {
	normalizer *service.Normalizer
	writer     *service.BatchWriter
	logger     *slog.Logger
}

func New(normalizer *service.Normalizer, writer *service.BatchWriter, logger *slog.Logger) *Importer {
	return &Importer{
		normalizer: normalizer,
		writer:     writer,
		logger:     logger,
	}
}

// Run imports the corpus at path. The staged corpus is newest-first,
// mirroring the listing it was scraped from; records are reversed to
// oldest-first before ordering assignment, with sort_order starting at 1
// and timestamps anchored to the fixed bulk-import instant.
func (imp *Importer) Run(ctx context.Context, path string) (*domain.SyncStats, error) {
	startTime := time.Now()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}

	records, err := decodeCorpus(data)
	if err != nil {
		return nil, fmt.Errorf("decode corpus %s: %w", path, err)
	}

	stats := &domain.SyncStats{Fetched: len(records)}
	imp.logger.Info("loaded corpus", "path", path, "records", len(records))

	videos := make([]domain.Video, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		video, err := imp.normalizer.Normalize(domain.RawItem{
			Title:     rec.Title,
			Link:      rec.Link,
			Thumbnail: rec.Thumbnail,
		})
		if err != nil {
			stats.Malformed++
			imp.logger.Warn("skipping malformed corpus record", "link", rec.Link, "error", err)
			continue
		}
		videos = append(videos, *video)
	}

	service.Assign(videos, 0, service.BulkImportAnchor)

	batches, err := imp.writer.Write(ctx, videos)
	stats.Batches = batches
	if err != nil {
		return stats, fmt.Errorf("write batches: %w", err)
	}
	stats.New = len(videos)
	stats.Duration = time.Since(startTime)

	imp.logger.Info("import completed",
		"records", stats.Fetched,
		"imported", stats.New,
		"malformed", stats.Malformed,
		"batches", stats.Batches,
		"duration", stats.Duration,
	)

	return stats, nil
}

// decodeCorpus accepts either a bare JSON array of records or the
// legacy {"last_updated": ..., "videos": [...]} envelope.
func decodeCorpus(data []byte) ([]corpusRecord, error) {
	var records []corpusRecord
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	var envelope corpusEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}
	if envelope.Videos == nil {
		return nil, fmt.Errorf("no videos field in corpus envelope")
	}
	return envelope.Videos, nil
}

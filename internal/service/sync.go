package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/meeeeeooooowwwwwww/updates/internal/config"
	"github.com/meeeeeooooowwwwwww/updates/internal/domain"
)

// SyncService runs the incremental pipeline: resolve high-water mark,
// scrape, diff, assign ordering, write batches, publish.
type SyncService struct {
	source     Source
	resolver   *Resolver
	diff       *DiffEngine
	normalizer *Normalizer
	writer     *BatchWriter
	publisher  Publisher
	logger     *slog.Logger
	config     config.SyncConfig
}

func NewSyncService(
	source Source,
	resolver *Resolver,
	diff *DiffEngine,
	normalizer *Normalizer,
	writer *BatchWriter,
	publisher Publisher,
	logger *slog.Logger,
	cfg config.SyncConfig,
) *SyncService {
	return &SyncService{
		source:     source,
		resolver:   resolver,
		diff:       diff,
		normalizer: normalizer,
		writer:     writer,
		publisher:  publisher,
		logger:     logger.With("source", source.Name()),
		config:     cfg,
	}
}

func (s *SyncService) Sync(ctx context.Context) (*domain.SyncStats, error) {
	startTime := time.Now()
	stats := &domain.SyncStats{RunID: uuid.NewString()}
	logger := s.logger.With("run_id", stats.RunID)

	logger.Info("starting sync", "max_pages", s.config.MaxPagesPerSync)

	hwm := s.resolver.Resolve(ctx)
	stats.Degraded = hwm.Degraded
	logger.Info("resolved high-water mark",
		"boundary_id", hwm.BoundaryID,
		"max_sort_order", hwm.MaxSortOrder,
		"degraded", hwm.Degraded,
	)

	// Scrape pages until the boundary is found or the page cap is hit.
	// The diff runs over the accumulated newest-first list each time, so
	// re-running it after an extra page is safe.
	var items []domain.RawItem
	var result DiffResult
	for page := 0; page < s.config.MaxPagesPerSync; page++ {
		pageItems, err := s.source.FetchListingPage(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("fetch listing page %d: %w", page, err)
		}
		items = append(items, pageItems...)

		result, err = s.diff.Diff(ctx, items, hwm.BoundaryID)
		if err != nil {
			return nil, fmt.Errorf("diff: %w", err)
		}
		if !result.Ambiguous || len(pageItems) == 0 {
			break
		}
		logger.Warn("boundary not found in scanned items, fetching another page",
			"scanned", len(items),
			"boundary_id", hwm.BoundaryID,
		)
	}

	stats.Fetched = len(items)
	stats.Ambiguous = result.Ambiguous
	if result.Ambiguous {
		logger.Warn("boundary still ambiguous at page cap, proceeding with scanned items",
			"new_candidates", len(result.New),
		)
	}

	videos := make([]domain.Video, 0, len(result.New))
	for _, item := range result.New {
		video, err := s.normalizer.Normalize(item)
		if err != nil {
			stats.Malformed++
			logger.Warn("skipping malformed item", "link", item.Link, "error", err)
			continue
		}
		videos = append(videos, *video)
	}

	Assign(videos, hwm.MaxSortOrder, time.Now().UTC())

	batches, err := s.writer.Write(ctx, videos)
	stats.Batches = batches
	if err != nil {
		return stats, fmt.Errorf("write batches: %w", err)
	}
	stats.New = len(videos)

	if s.publisher != nil {
		for i := range videos {
			if err := s.publisher.Publish(ctx, &videos[i]); err != nil {
				logger.Warn("publish failed", "id", videos[i].ID, "error", err)
				continue
			}
			stats.Published++
		}
	}

	stats.Duration = time.Since(startTime)

	logger.Info("sync completed",
		"fetched", stats.Fetched,
		"new", stats.New,
		"malformed", stats.Malformed,
		"batches", stats.Batches,
		"published", stats.Published,
		"ambiguous", stats.Ambiguous,
		"degraded", stats.Degraded,
		"duration", stats.Duration,
	)

	return stats, nil
}

package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/meeeeeooooowwwwwww/updates/internal/domain"
)

// BoundaryStrategy selects how the diff engine decides which scraped
// items are new.
type BoundaryStrategy string

const (
	// StopAtBoundary scans newest-first and stops at the last-known
	// platform id; everything ahead of the boundary is new.
	StopAtBoundary BoundaryStrategy = "stop_at_boundary"
	// CheckExisting probes the sink for every scanned id and keeps the
	// unknown ones. Slower, but immune to the boundary video being
	// deleted from the listing.
	CheckExisting BoundaryStrategy = "check_existing"
)

// DiffResult is the outcome of one diff pass. New is ordered
// oldest-new-first so that sort_order assignment follows insertion
// order. Ambiguous means the boundary id was set but never seen in the
// scanned items: either more than one page of backlog, or the boundary
// video no longer exists. The caller decides whether to fetch more.
type DiffResult struct {
	New       []domain.RawItem
	Ambiguous bool
}

// DiffEngine computes the ordered subset of genuinely new items from a
// newest-first listing scrape.
type DiffEngine struct {
	strategy BoundaryStrategy
	platform string
	sink     Sink
	logger   *slog.Logger
}

func NewDiffEngine(strategy BoundaryStrategy, platform string, sink Sink, logger *slog.Logger) *DiffEngine {
	return &DiffEngine{
		strategy: strategy,
		platform: platform,
		sink:     sink,
		logger:   logger,
	}
}

func (e *DiffEngine) Diff(ctx context.Context, items []domain.RawItem, boundaryID string) (DiffResult, error) {
	switch e.strategy {
	case CheckExisting:
		return e.diffCheckExisting(ctx, items)
	default:
		return e.diffStopAtBoundary(items, boundaryID), nil
	}
}

func (e *DiffEngine) diffStopAtBoundary(items []domain.RawItem, boundaryID string) DiffResult {
	var result DiffResult
	matched := false

	for _, item := range items {
		pid, err := PlatformID(item.Link)
		if err == nil && boundaryID != "" && pid == boundaryID {
			matched = true
			break
		}
		// Items with an unextractable id cannot match the boundary;
		// they pass through and get rejected by the normalizer.
		result.New = append(result.New, item)
	}

	if boundaryID != "" && !matched && len(items) > 0 {
		result.Ambiguous = true
	}

	reverseItems(result.New)
	return result
}

func (e *DiffEngine) diffCheckExisting(ctx context.Context, items []domain.RawItem) (DiffResult, error) {
	if len(items) == 0 {
		return DiffResult{}, nil
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		pid, err := PlatformID(item.Link)
		if err != nil {
			continue
		}
		ids = append(ids, e.platform+":"+pid)
	}

	existing, err := e.sink.ExistingIDs(ctx, ids)
	if err != nil {
		return DiffResult{}, fmt.Errorf("check existing ids: %w", err)
	}

	var result DiffResult
	for _, item := range items {
		pid, err := PlatformID(item.Link)
		if err != nil {
			result.New = append(result.New, item)
			continue
		}
		if _, known := existing[e.platform+":"+pid]; known {
			e.logger.Debug("skipping known video", "platform_id", pid)
			continue
		}
		result.New = append(result.New, item)
	}

	reverseItems(result.New)
	return result, nil
}

func reverseItems(items []domain.RawItem) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}

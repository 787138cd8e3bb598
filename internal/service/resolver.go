package service

import (
	"context"
	"log/slog"

	"github.com/meeeeeooooowwwwwww/updates/internal/domain"
)

// Resolver finds the sink's high-water mark: the platform id of the most
// recently recorded video and the current maximum sort_order.
//
// Query failures resolve to an empty-sink default with Degraded set.
// This fails open on purpose: over-fetching is safe because the batch
// writer dedups by id, while halting (or silently under-fetching) could
// drop videos forever.
type Resolver struct {
	sink   Sink
	logger *slog.Logger
}

func NewResolver(sink Sink, logger *slog.Logger) *Resolver {
	return &Resolver{sink: sink, logger: logger}
}

func (r *Resolver) Resolve(ctx context.Context) domain.HighWaterMark {
	head, err := r.sink.QueryLatest(ctx)
	if err != nil {
		r.logger.Warn("query latest failed, treating sink as empty", "error", err)
		return domain.HighWaterMark{Degraded: true}
	}
	if head == nil {
		return domain.HighWaterMark{}
	}

	maxOrder, err := r.sink.MaxSortOrder(ctx)
	if err != nil {
		r.logger.Warn("query max sort_order failed, treating sink as empty", "error", err)
		return domain.HighWaterMark{Degraded: true}
	}

	return domain.HighWaterMark{
		BoundaryID:   head.PlatformID,
		MaxSortOrder: maxOrder,
	}
}

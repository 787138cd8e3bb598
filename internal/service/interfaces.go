package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/meeeeeooooowwwwwww/updates/internal/domain"
)

// Source fetches one page of the video listing, newest-first.
type Source interface {
	Name() string
	FetchListingPage(ctx context.Context, page int) ([]domain.RawItem, error)
}

// Sink is the remote videos table. ApplyBatch must treat an insert of an
// existing id as a no-op; that dedup guarantee is the only safety net
// against over-fetching and re-runs.
type Sink interface {
	QueryLatest(ctx context.Context) (*domain.SinkHead, error)
	MaxSortOrder(ctx context.Context) (int64, error)
	ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error)
	ApplyBatch(ctx context.Context, statements []string) error
}

// Publisher fans out newly persisted videos to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, video *domain.Video) error
	Close() error
}

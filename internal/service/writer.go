package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/meeeeeooooowwwwwww/updates/internal/domain"
	"github.com/meeeeeooooowwwwwww/updates/internal/storage/sqlgen"
)

// BatchWriter serializes videos into size-bounded chunks of INSERT
// statements and applies them to the sink strictly in order. A chunk
// failure aborts the remaining chunks; chunks already applied stay
// applied (at-least-once, no rollback). The next run reconciles via
// dedup-by-id.
type BatchWriter struct {
	sink      Sink
	dialect   sqlgen.Dialect
	batchSize int
	logger    *slog.Logger
}

// defaultBatchSize backstops a zero or negative configured size so
// Write always makes progress through the slice.
const defaultBatchSize = 500

func NewBatchWriter(sink Sink, dialect sqlgen.Dialect, batchSize int, logger *slog.Logger) *BatchWriter {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &BatchWriter{
		sink:      sink,
		dialect:   dialect,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Write applies videos in insertion order and returns the number of
// batches applied before success or failure.
func (w *BatchWriter) Write(ctx context.Context, videos []domain.Video) (int, error) {
	applied := 0

	for start := 0; start < len(videos); start += w.batchSize {
		end := start + w.batchSize
		if end > len(videos) {
			end = len(videos)
		}
		chunk := videos[start:end]

		statements := make([]string, len(chunk))
		for i, v := range chunk {
			statements[i] = sqlgen.InsertVideo(v, w.dialect)
		}

		if err := w.sink.ApplyBatch(ctx, statements); err != nil {
			return applied, fmt.Errorf("apply batch %d (%d videos): %w", applied+1, len(chunk), err)
		}
		applied++

		w.logger.Debug("applied batch", "batch", applied, "videos", len(chunk))
	}

	return applied, nil
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/meeeeeooooowwwwwww/updates/internal/domain"
)

// Sink implements service.Sink on a postgres videos table.
type Sink struct {
	db *sqlx.DB
}

func NewSink(db *sqlx.DB) *Sink {
	return &Sink{db: db}
}

func (s *Sink) QueryLatest(ctx context.Context) (*domain.SinkHead, error) {
	var head domain.SinkHead
	query := `
		SELECT id, platform_id, sort_order
		FROM videos
		ORDER BY sort_order DESC
		LIMIT 1`

	err := s.db.GetContext(ctx, &head, query)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &head, nil
}

func (s *Sink) MaxSortOrder(ctx context.Context) (int64, error) {
	var max int64
	err := s.db.GetContext(ctx, &max, `SELECT COALESCE(MAX(sort_order), 0) FROM videos`)
	return max, err
}

func (s *Sink) ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	result := make(map[string]struct{})
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM videos WHERE id = ANY($1)`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result[id] = struct{}{}
	}

	return result, rows.Err()
}

// ApplyBatch executes one chunk's statements inside a single
// transaction, so a chunk lands as a unit of work or not at all.
func (s *Sink) ApplyBatch(ctx context.Context, statements []string) error {
	if len(statements) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch transaction: %w", err)
	}

	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("execute insert: %w", err)
		}
	}

	return tx.Commit()
}

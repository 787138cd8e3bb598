// Package d1 talks to a Cloudflare D1 videos table through the wrangler
// CLI. Reads go through `d1 execute --command --json`; writes are staged
// as temporary .sql files and applied with `d1 execute --file`.
package d1

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/meeeeeooooowwwwwww/updates/internal/domain"
	"github.com/meeeeeooooowwwwwww/updates/internal/storage/sqlgen"
)

type Config struct {
	Binary   string
	Database string
	Remote   bool
}

type Sink struct {
	binary   string
	database string
	remote   bool
	logger   *slog.Logger
}

func NewSink(cfg Config, logger *slog.Logger) *Sink {
	return &Sink{
		binary:   cfg.Binary,
		database: cfg.Database,
		remote:   cfg.Remote,
		logger:   logger.With("sink", "d1"),
	}
}

// resultEnvelope matches wrangler's --json output: one entry per
// executed statement.
type resultEnvelope []struct {
	Results json.RawMessage `json:"results"`
	Success bool            `json:"success"`
}

func (s *Sink) QueryLatest(ctx context.Context) (*domain.SinkHead, error) {
	raw, err := s.query(ctx,
		"SELECT id, platform_id, sort_order FROM videos ORDER BY sort_order DESC LIMIT 1")
	if err != nil {
		return nil, err
	}

	var rows []struct {
		ID         string `json:"id"`
		PlatformID string `json:"platform_id"`
		SortOrder  int64  `json:"sort_order"`
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode latest row: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	return &domain.SinkHead{
		ID:         rows[0].ID,
		PlatformID: rows[0].PlatformID,
		SortOrder:  rows[0].SortOrder,
	}, nil
}

func (s *Sink) MaxSortOrder(ctx context.Context) (int64, error) {
	raw, err := s.query(ctx, "SELECT COALESCE(MAX(sort_order), 0) AS max_sort_order FROM videos")
	if err != nil {
		return 0, err
	}

	var rows []struct {
		MaxSortOrder int64 `json:"max_sort_order"`
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return 0, fmt.Errorf("decode max sort_order: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].MaxSortOrder, nil
}

func (s *Sink) ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	result := make(map[string]struct{})
	if len(ids) == 0 {
		return result, nil
	}

	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = sqlgen.Quote(id)
	}

	raw, err := s.query(ctx,
		fmt.Sprintf("SELECT id FROM videos WHERE id IN (%s)", strings.Join(quoted, ", ")))
	if err != nil {
		return nil, err
	}

	var rows []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode existing ids: %w", err)
	}
	for _, row := range rows {
		result[row.ID] = struct{}{}
	}
	return result, nil
}

// ApplyBatch stages the chunk as a temporary .sql file and hands it to
// wrangler. The staging file is removed after a successful apply;
// removal failures are logged, non-fatal.
func (s *Sink) ApplyBatch(ctx context.Context, statements []string) error {
	if len(statements) == 0 {
		return nil
	}

	file, err := os.CreateTemp("", "videos-batch-*.sql")
	if err != nil {
		return fmt.Errorf("create batch file: %w", err)
	}
	path := file.Name()

	if _, err := file.WriteString(strings.Join(statements, "\n") + "\n"); err != nil {
		file.Close()
		return fmt.Errorf("write batch file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close batch file: %w", err)
	}

	args := s.args("--file", path)
	cmd := exec.CommandContext(ctx, s.binary, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("apply batch file %s: %w: %s", path, err, strings.TrimSpace(string(out)))
	}

	if err := os.Remove(path); err != nil {
		s.logger.Warn("failed to remove batch file", "path", path, "error", err)
	}
	return nil
}

func (s *Sink) query(ctx context.Context, command string) (json.RawMessage, error) {
	args := s.args("--json", "--command", command)
	cmd := exec.CommandContext(ctx, s.binary, args...)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("d1 query: %w", err)
	}

	var envelope resultEnvelope
	if err := json.Unmarshal(out, &envelope); err != nil {
		return nil, fmt.Errorf("decode d1 output: %w", err)
	}
	if len(envelope) == 0 {
		return nil, fmt.Errorf("d1 query: empty result envelope")
	}
	if !envelope[0].Success {
		return nil, fmt.Errorf("d1 query: statement reported failure")
	}
	return envelope[0].Results, nil
}

func (s *Sink) args(extra ...string) []string {
	args := []string{"d1", "execute", s.database}
	if s.remote {
		args = append(args, "--remote")
	}
	return append(args, extra...)
}

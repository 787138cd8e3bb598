// Package sqlgen builds the literal INSERT statements applied by the
// batch writer. Statements are plain strings because the d1 sink hands
// them to an external CLI; escaping therefore has to be airtight on its
// own, without driver-side parameterization.
package sqlgen

import (
	"strconv"
	"strings"
	"time"

	"github.com/meeeeeooooowwwwwww/updates/internal/domain"
)

// Dialect selects the duplicate-id policy clause. Inserting an existing
// id must be a no-op so that re-runs never corrupt ordering.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

// Quote returns s as a single-quoted SQL string literal with embedded
// single quotes doubled.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// QuoteNullable returns NULL for a nil value, never an empty string.
func QuoteNullable(s *string) string {
	if s == nil {
		return "NULL"
	}
	return Quote(*s)
}

// InsertVideo serializes one video into an idempotent INSERT.
func InsertVideo(v domain.Video, dialect Dialect) string {
	var sb strings.Builder

	if dialect == SQLite {
		sb.WriteString("INSERT OR IGNORE INTO videos ")
	} else {
		sb.WriteString("INSERT INTO videos ")
	}
	sb.WriteString("(id, title, link, thumbnail, publish_date, platform, platform_id, source_type, sort_order) VALUES (")
	sb.WriteString(Quote(v.ID))
	sb.WriteString(", ")
	sb.WriteString(Quote(v.Title))
	sb.WriteString(", ")
	sb.WriteString(Quote(v.Link))
	sb.WriteString(", ")
	sb.WriteString(QuoteNullable(v.Thumbnail))
	sb.WriteString(", ")
	sb.WriteString(Quote(v.PublishDate.UTC().Format(time.RFC3339)))
	sb.WriteString(", ")
	sb.WriteString(Quote(v.Platform))
	sb.WriteString(", ")
	sb.WriteString(Quote(v.PlatformID))
	sb.WriteString(", ")
	sb.WriteString(Quote(v.SourceType))
	sb.WriteString(", ")
	sb.WriteString(strconv.FormatInt(v.SortOrder, 10))
	sb.WriteString(")")

	if dialect == Postgres {
		sb.WriteString(" ON CONFLICT (id) DO NOTHING")
	}
	sb.WriteString(";")

	return sb.String()
}

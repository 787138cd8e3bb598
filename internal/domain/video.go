package domain

import "time"

// Video is the canonical persisted record. ID is derived as
// "<platform>:<platform_id>" and never changes after construction.
type Video struct {
	ID          string    `json:"id" db:"id"`
	PlatformID  string    `json:"platform_id" db:"platform_id"`
	Title       string    `json:"title" db:"title"`
	Link        string    `json:"link" db:"link"`
	Thumbnail   *string   `json:"thumbnail" db:"thumbnail"`
	Platform    string    `json:"platform" db:"platform"`
	SourceType  string    `json:"source_type" db:"source_type"`
	SortOrder   int64     `json:"sort_order" db:"sort_order"`
	PublishDate time.Time `json:"publish_date" db:"publish_date"`
}

// RawItem is one scraped listing entry before normalization.
// PublishedHint carries the listing's relative date text ("3 hours ago")
// for diagnostics; the persisted publish_date is always synthesized.
type RawItem struct {
	Title         string
	Link          string
	Thumbnail     string
	PublishedHint string
}

// HighWaterMark is the resolver's view of the sink head. Degraded marks
// the fail-open path taken when the sink could not be queried: the
// pipeline then treats the sink as empty and relies on dedup-by-id.
type HighWaterMark struct {
	BoundaryID   string
	MaxSortOrder int64
	Degraded     bool
}

// SinkHead is the row with the largest sort_order.
type SinkHead struct {
	ID         string `db:"id"`
	PlatformID string `db:"platform_id"`
	SortOrder  int64  `db:"sort_order"`
}

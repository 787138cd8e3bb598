package service

import (
	"time"

	"github.com/meeeeeooooowwwwwww/updates/internal/domain"
)

// timestampSpacing separates consecutive synthetic publish dates. The
// real publish time is not reliably extractable from the listing, so
// publish_date only has to preserve relative order.
const timestampSpacing = time.Minute

// BulkImportAnchor is the fixed baseTime for full corpus imports. It
// sits far in the future so that a re-import over the same input yields
// byte-identical timestamps regardless of when it runs.
var BulkImportAnchor = time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)

// Assign sets sort_order and a synthetic publish_date on each video,
// in place. videos must be ordered oldest-new-first. sort_order
// continues from baseSortOrder; the newest video gets the timestamp
// closest to baseTime, older ones progressively earlier, strictly
// decreasing.
func Assign(videos []domain.Video, baseSortOrder int64, baseTime time.Time) {
	n := len(videos)
	for i := range videos {
		videos[i].SortOrder = baseSortOrder + int64(i) + 1
		videos[i].PublishDate = baseTime.Add(-time.Duration(n-1-i) * timestampSpacing).UTC()
	}
}

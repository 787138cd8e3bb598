package rumble

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meeeeeooooowwwwwww/updates/internal/domain"
)

func TestNewestHint(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)
	items := []domain.RawItem{
		{Link: "https://rumble.com/v2-b.html", PublishedHint: "3 hours ago"},
		{Link: "https://rumble.com/v1-a.html", PublishedHint: "2 days ago"},
	}

	got, ok := newestHint(items, now)
	require.True(t, ok)
	assert.Equal(t, now.Add(-3*time.Hour), got, "the first item is the newest")
}

func TestNewestHint_NoItems(t *testing.T) {
	_, ok := newestHint(nil, time.Now())
	assert.False(t, ok)
}

func TestNewestHint_UnparsableText(t *testing.T) {
	items := []domain.RawItem{{Link: "https://rumble.com/v1-a.html", PublishedHint: "LIVE"}}

	_, ok := newestHint(items, time.Now())
	assert.False(t, ok)
}

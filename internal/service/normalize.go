package service

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/meeeeeooooowwwwwww/updates/internal/domain"
)

// Normalizer converts raw listing items into canonical Video records.
// Normalization is idempotent: the same raw item always yields the same
// id, which is what makes dedup-by-id reliable across scrapes.
type Normalizer struct {
	platform   string
	sourceType string
}

func NewNormalizer(platform, sourceType string) *Normalizer {
	return &Normalizer{platform: platform, sourceType: sourceType}
}

// Normalize validates the item and derives its stable identity. Items
// missing a title, an absolute link or an extractable platform id are
// rejected with domain.ErrMalformedItem.
func (n *Normalizer) Normalize(item domain.RawItem) (*domain.Video, error) {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: empty title", domain.ErrMalformedItem)
	}
	if !strings.HasPrefix(item.Link, "http://") && !strings.HasPrefix(item.Link, "https://") {
		return nil, fmt.Errorf("%w: link %q is not absolute", domain.ErrMalformedItem, item.Link)
	}

	pid, err := PlatformID(item.Link)
	if err != nil {
		return nil, err
	}

	video := &domain.Video{
		ID:         n.platform + ":" + pid,
		PlatformID: pid,
		Title:      title,
		Link:       item.Link,
		Platform:   n.platform,
		SourceType: n.sourceType,
	}
	if item.Thumbnail != "" {
		thumb := item.Thumbnail
		video.Thumbnail = &thumb
	}

	return video, nil
}

// PlatformID extracts the natural key from a video link: the last path
// segment, cut at the first '-'. Rumble links look like
// https://rumble.com/v4abc12-some-title.html, giving "v4abc12".
// The same rule is applied everywhere; an inconsistent rule would break
// boundary matching silently.
func PlatformID(link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("%w: unparseable link %q", domain.ErrMalformedItem, link)
	}

	segment := strings.TrimSuffix(u.Path, "/")
	if i := strings.LastIndex(segment, "/"); i >= 0 {
		segment = segment[i+1:]
	}
	if i := strings.Index(segment, "-"); i >= 0 {
		segment = segment[:i]
	}
	segment = strings.TrimSuffix(segment, ".html")

	if segment == "" {
		return "", fmt.Errorf("%w: no platform id in link %q", domain.ErrMalformedItem, link)
	}
	return segment, nil
}

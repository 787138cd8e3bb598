package rumble

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"

	"github.com/meeeeeooooowwwwwww/updates/internal/domain"
)

const (
	SourceName = "rumble"

	baseURL = "https://rumble.com"

	gridSelector  = "ol.thumbnail__grid"
	thumbSelector = "ol.thumbnail__grid div.thumbnail__thumb"
	imageSelector = "img.thumbnail__image"
	linkSelector  = "a.videostream__link.link"
)

// Config holds rumble source configuration.
type Config struct {
	ListingURL string
	Timeout    time.Duration
	Headless   bool
	BrowserBin string
}

// Source scrapes a Rumble channel listing page with a headless browser.
// The listing renders client-side, so a plain HTTP fetch is not enough.
type Source struct {
	browser    *rod.Browser
	listingURL string
	timeout    time.Duration
	logger     *slog.Logger
}

func New(cfg Config, logger *slog.Logger) (*Source, error) {
	bin := cfg.BrowserBin
	if bin == "" {
		bin, _ = launcher.LookPath()
	}

	l := launcher.New().
		Bin(bin).
		Set("disable-gpu").
		Set("no-sandbox")
	if cfg.Headless {
		l = l.Set("headless", "new")
	} else {
		l = l.Headless(false)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	return &Source{
		browser:    browser,
		listingURL: cfg.ListingURL,
		timeout:    cfg.Timeout,
		logger:     logger.With("source", SourceName),
	}, nil
}

func (s *Source) Name() string {
	return SourceName
}

// FetchListingPage returns the items of one listing page, newest-first.
// page is 0-based; Rumble paginates with ?page=N starting at 1.
func (s *Source) FetchListingPage(ctx context.Context, page int) ([]domain.RawItem, error) {
	pg, err := stealth.Page(s.browser)
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	defer pg.Close()
	pg = pg.Context(ctx).Timeout(s.timeout)

	url := s.listingURL
	if page > 0 {
		url = fmt.Sprintf("%s?page=%d", s.listingURL, page+1)
	}

	s.logger.Debug("navigating", "url", url)
	if err := pg.Navigate(url); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := pg.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait for page load: %w", err)
	}
	if _, err := pg.Element(gridSelector); err != nil {
		return nil, fmt.Errorf("video grid not found on %s: %w", url, err)
	}

	// Nudge lazy-loaded thumbnails into the viewport.
	_ = pg.Mouse.Scroll(0, 500, 1)

	elements, err := pg.Elements(thumbSelector)
	if err != nil {
		return nil, fmt.Errorf("query video elements: %w", err)
	}

	items := make([]domain.RawItem, 0, len(elements))
	for _, el := range elements {
		item, ok := s.extractItem(el)
		if !ok {
			continue
		}
		items = append(items, item)
	}

	if hint, ok := newestHint(items, time.Now().UTC()); ok {
		s.logger.Debug("scraped listing page",
			"page", page,
			"items", len(items),
			"newest_hint", hint,
		)
	} else {
		s.logger.Debug("scraped listing page", "page", page, "items", len(items))
	}
	return items, nil
}

// newestHint parses the relative-date text of the newest scraped item,
// giving the debug log a rough age for the head of the listing.
func newestHint(items []domain.RawItem, now time.Time) (time.Time, bool) {
	if len(items) == 0 {
		return time.Time{}, false
	}
	return ParseRelativeDate(items[0].PublishedHint, now)
}

// extractItem pulls title/link/thumbnail from one grid entry. Partial
// entries are returned as-is; the normalizer decides what to reject.
func (s *Source) extractItem(el *rod.Element) (domain.RawItem, bool) {
	var item domain.RawItem

	if img, err := el.Element(imageSelector); err == nil {
		if alt, err := img.Attribute("alt"); err == nil && alt != nil {
			item.Title = *alt
		}
		if src, err := img.Attribute("src"); err == nil && src != nil {
			item.Thumbnail = *src
		}
	}

	link, err := el.Element(linkSelector)
	if err != nil {
		return item, false
	}
	href, err := link.Attribute("href")
	if err != nil || href == nil {
		return item, false
	}
	item.Link = *href
	if strings.HasPrefix(item.Link, "/") {
		item.Link = baseURL + item.Link
	}

	if t, err := el.Element("time"); err == nil {
		if text, err := t.Text(); err == nil {
			item.PublishedHint = strings.TrimSpace(text)
		}
	}

	return item, true
}

func (s *Source) Close() error {
	return s.browser.Close()
}

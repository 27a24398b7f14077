package scrape

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// ScholarPageSize is the number of publication rows requested per page.
	ScholarPageSize = 100
	// DefaultScholarMaxPages bounds pagination for a single profile.
	DefaultScholarMaxPages = 10
)

// Publication is one row of a publication listing.
type Publication struct {
	Title     string
	Citations string
}

// String formats the publication as "Title (Cited by N)".
func (p Publication) String() string {
	cites := p.Citations
	if cites == "" {
		cites = "0"
	}
	return fmt.Sprintf("%s (Cited by %s)", p.Title, cites)
}

// JoinPublications renders publications as one "; "-delimited string.
func JoinPublications(pubs []Publication) string {
	parts := make([]string, len(pubs))
	for i, p := range pubs {
		parts[i] = p.String()
	}
	return strings.Join(parts, "; ")
}

// ParseScholarPage extracts the display name and publication rows from one
// profile page.
func ParseScholarPage(body []byte) (string, []Publication, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", nil, err
	}

	name := strings.TrimSpace(doc.Find("#gsc_prf_in").First().Text())

	var pubs []Publication
	doc.Find(".gsc_a_tr").Each(func(_ int, row *goquery.Selection) {
		title := strings.TrimSpace(row.Find(".gsc_a_t a").First().Text())
		if title == "" {
			return
		}
		pubs = append(pubs, Publication{
			Title:     title,
			Citations: strings.TrimSpace(row.Find(".gsc_a_c a").First().Text()),
		})
	})
	return name, pubs, nil
}

// ScholarScraper reads publication profiles page by page.
type ScholarScraper struct {
	fetcher  *Fetcher
	maxPages int
	logger   *slog.Logger
}

// NewScholarScraper creates a scraper that fetches through fetcher.
func NewScholarScraper(fetcher *Fetcher, logger *slog.Logger) *ScholarScraper {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScholarScraper{
		fetcher:  fetcher,
		maxPages: DefaultScholarMaxPages,
		logger:   logger.With("component", "scholar"),
	}
}

// pageURL returns the profile URL for the page starting at offset.
func pageURL(profile string, offset int) (string, error) {
	u, err := url.Parse(profile)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("cstart", strconv.Itoa(offset))
	q.Set("pagesize", strconv.Itoa(ScholarPageSize))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Scrape returns the display name and every publication listed on the
// profile at profileURL. Pagination stops at the first short page. A page
// with neither a name nor publications is not a profile and is an error.
func (s *ScholarScraper) Scrape(ctx context.Context, profileURL string) (string, []Publication, error) {
	var (
		name string
		all  []Publication
	)
	for page := 0; page < s.maxPages; page++ {
		u, err := pageURL(profileURL, page*ScholarPageSize)
		if err != nil {
			return "", nil, fmt.Errorf("invalid profile url: %w", err)
		}
		body, _, err := s.fetcher.Get(ctx, u)
		if err != nil {
			return "", nil, err
		}
		pageName, pubs, err := ParseScholarPage(body)
		if err != nil {
			return "", nil, fmt.Errorf("failed to parse profile page: %w", err)
		}
		if page == 0 {
			name = pageName
		}
		all = append(all, pubs...)

		s.logger.Debug("scraped profile page", "url", profileURL, "page", page, "rows", len(pubs))
		if len(pubs) < ScholarPageSize {
			break
		}
	}

	if name == "" && len(all) == 0 {
		return "", nil, ErrNoScholarName
	}
	return name, all, nil
}

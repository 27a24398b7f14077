package scrape

import (
	"context"
	"io"
	"log/slog"

	"github.com/poiesic/scholarmatch/core"
	"github.com/poiesic/scholarmatch/roster"
)

// WebBatch fetches every roster person's web pages. Each person gets a
// record in roster order, with empty text when no URL yields content.
func WebBatch(ctx context.Context, fetcher *Fetcher, people []roster.Person, failures *FailureLog, progress io.Writer) ([]core.PersonRecord, error) {
	logger := fetcher.logger
	tracker := NewProgressTracker(progress, "people", len(people), 1)
	tracker.Start()
	defer tracker.Finish()

	records := make([]core.PersonRecord, 0, len(people))
	for _, person := range people {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		urls := URLsFromCells(person.WebCells)
		text := ""
		if len(urls) > 0 {
			var failed []Failure
			text, failed = fetcher.FetchPerson(ctx, person.Name, urls)
			if failures != nil {
				failures.Add(failed...)
			}
		}
		logger.Debug("scraped web pages", "name", person.Name, "urls", len(urls), "chars", len(text))
		records = append(records, core.PersonRecord{Name: person.Name, Text: text})
		tracker.Increment(1)
	}
	return records, nil
}

// ScholarBatch scrapes the publication profile of every roster person that
// has one. Records are keyed by the scraped display name, or the roster
// name when the page has none. People without a profile URL are skipped.
func ScholarBatch(ctx context.Context, scraper *ScholarScraper, people []roster.Person, failures *FailureLog, progress io.Writer) ([]core.PersonRecord, error) {
	var withProfile []roster.Person
	for _, person := range people {
		if person.ScholarURL != "" {
			withProfile = append(withProfile, person)
		}
	}

	tracker := NewProgressTracker(progress, "profiles", len(withProfile), 1)
	tracker.Start()
	defer tracker.Finish()

	records := make([]core.PersonRecord, 0, len(withProfile))
	for _, person := range withProfile {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		name, pubs, err := scraper.Scrape(ctx, person.ScholarURL)
		tracker.Increment(1)
		if err != nil {
			scraper.logger.Warn("failed to scrape profile", "name", person.Name, "url", person.ScholarURL, "err", err)
			if failures != nil {
				failures.Add(Failure{Person: person.Name, URL: person.ScholarURL, Err: err.Error()})
			}
			continue
		}
		if name == "" {
			name = person.Name
		}
		scraper.logger.Debug("scraped profile", slog.String("name", name), slog.Int("publications", len(pubs)))
		records = append(records, core.PersonRecord{Name: name, Text: JoinPublications(pubs)})
	}
	return records, nil
}

package scrape

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// DefaultFailureLog is the file name failures are written to by the CLI.
const DefaultFailureLog = "bad_urls.log"

// Failure records one URL that could not be scraped.
type Failure struct {
	Person string
	URL    string
	Err    string
}

// FailureLog collects scraping failures. It is safe for concurrent use.
type FailureLog struct {
	mu      sync.Mutex
	entries []Failure
}

// Add appends failures in order.
func (l *FailureLog) Add(failures ...Failure) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, failures...)
}

// Entries returns a copy of the recorded failures.
func (l *FailureLog) Entries() []Failure {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Failure, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of recorded failures.
func (l *FailureLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// WriteTo writes one tab-separated "person url error" line per failure.
func (l *FailureLog) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, f := range l.Entries() {
		line := fmt.Sprintf("%s\t%s\t%s\n", f.Person, f.URL, oneLine(f.Err))
		n, err := io.WriteString(w, line)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Save writes the log to path, replacing any existing file.
func (l *FailureLog) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create failure log: %w", err)
	}
	if _, err := l.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write failure log: %w", err)
	}
	return f.Close()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

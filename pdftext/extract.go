package pdftext

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/poiesic/scholarmatch/core"
)

// Failure records a file that could not be extracted.
type Failure struct {
	File string
	Err  error
}

// Extractor reads PDF files.
type Extractor struct {
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
	}
}

// NewExtractor creates an Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "pdftext")
	return e
}

// IsPDF reports whether name has a .pdf extension, in any case.
func IsPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// ExtractFile returns the text of every non-empty page of the PDF at path,
// joined by a newline.
func (e *Extractor) ExtractFile(path string) (text string, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrUnreadablePDF, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if f != nil {
		defer f.Close()
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnreadablePDF, err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %w", ErrUnreadablePDF, i, err)
		}
		if pageText != "" {
			pages = append(pages, pageText)
		}
	}
	return strings.Join(pages, "\n"), nil
}

// ExtractDir extracts every PDF directly inside dir, in file name order.
// Non-PDF files are ignored; unreadable PDFs are returned as failures.
func (e *Extractor) ExtractDir(ctx context.Context, dir string) ([]core.PersonRecord, []Failure, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, nil, err
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}

	var (
		records  []core.PersonRecord
		failures []Failure
	)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return records, failures, err
		}
		if entry.IsDir() || !IsPDF(entry.Name()) {
			continue
		}

		text, err := e.ExtractFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			e.logger.Warn("failed to extract pdf", "file", entry.Name(), "err", err)
			failures = append(failures, Failure{File: entry.Name(), Err: err})
			continue
		}
		e.logger.Debug("extracted pdf", "file", entry.Name(), "chars", len(text))
		records = append(records, core.PersonRecord{Name: entry.Name(), Text: text})
	}

	e.logger.Info("extracted pdf directory", "dir", dir, "files", len(records), "failures", len(failures))
	return records, failures, nil
}

// ExtractDir extracts a directory with a default Extractor.
func ExtractDir(ctx context.Context, dir string) ([]core.PersonRecord, []Failure, error) {
	return NewExtractor().ExtractDir(ctx, dir)
}

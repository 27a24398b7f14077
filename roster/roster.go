// Package roster loads the faculty roster CSV that supplies the structured
// metadata joined onto every profile.
//
// Header names are matched loosely: each header is trimmed, lower-cased and
// stripped of ":" before a substring test, so "WashU Email Address:" is
// found as the email column.
package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/scholarmatch/core"
)

// Person is one roster row.
type Person struct {
	FirstName  string
	LastName   string
	Name       string // "First Last"
	Email      string
	School     string
	Department string
	Title      string
	WebCells   []string // raw contents of every web page column
	ScholarURL string
}

// CVKey returns the snapshot key a CV extractor produces for this person.
func (p Person) CVKey() string {
	return p.Name + " CV.pdf"
}

// Metadata returns the fields attached to every passage of this person's profile.
func (p Person) Metadata() core.Metadata {
	return core.Metadata{
		Name:       p.Name,
		Email:      p.Email,
		School:     p.School,
		Department: p.Department,
		Title:      p.Title,
	}
}

// Columns records which header index serves each field. Optional columns are -1
// when absent.
type Columns struct {
	FirstName  int
	LastName   int
	Email      int
	School     int
	Department int
	Title      int
	Web        []int
	Scholar    int
}

// Roster is an ordered list of people.
type Roster struct {
	People  []Person
	Columns Columns
	Headers []string // normalised header names
}

// NormalizeHeader trims, lower-cases and removes ":" from a header name.
func NormalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), ":", "")
}

func findColumn(headers []string, needle string) int {
	for i, h := range headers {
		if strings.Contains(h, needle) {
			return i
		}
	}
	return -1
}

// DetectColumns maps normalised headers onto roster fields.
// First and last name columns are required.
func DetectColumns(headers []string) (Columns, error) {
	cols := Columns{
		FirstName:  findColumn(headers, "first name"),
		LastName:   findColumn(headers, "last name"),
		Email:      findColumn(headers, "email"),
		School:     findColumn(headers, "school"),
		Department: findColumn(headers, "department"),
		Title:      findColumn(headers, "title"),
		Scholar:    findColumn(headers, "scholar"),
	}
	if cols.FirstName < 0 {
		return cols, fmt.Errorf("%w: first name", ErrMissingColumn)
	}
	if cols.LastName < 0 {
		return cols, fmt.Errorf("%w: last name", ErrMissingColumn)
	}
	for i, h := range headers {
		if i == cols.Scholar {
			continue
		}
		if strings.Contains(h, "webpage") || strings.Contains(h, "other") {
			cols.Web = append(cols.Web, i)
		}
	}
	return cols, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Parse reads a roster from CSV. Rows without a name are skipped.
func Parse(r io.Reader) (*Roster, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyRoster
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read roster header: %w", err)
	}

	headers := make([]string, len(header))
	for i, h := range header {
		headers[i] = NormalizeHeader(h)
	}
	cols, err := DetectColumns(headers)
	if err != nil {
		return nil, err
	}

	roster := &Roster{Columns: cols, Headers: headers}
	skipped := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read roster: %w", err)
		}

		p := Person{
			FirstName:  cell(row, cols.FirstName),
			LastName:   cell(row, cols.LastName),
			Email:      cell(row, cols.Email),
			School:     cell(row, cols.School),
			Department: cell(row, cols.Department),
			Title:      cell(row, cols.Title),
			ScholarURL: cell(row, cols.Scholar),
		}
		p.Name = strings.TrimSpace(p.FirstName + " " + p.LastName)
		if p.Name == "" {
			skipped++
			continue
		}
		for _, idx := range cols.Web {
			if v := cell(row, idx); v != "" {
				p.WebCells = append(p.WebCells, v)
			}
		}
		roster.People = append(roster.People, p)
	}

	if skipped > 0 {
		slog.Default().With("component", "roster").Debug("skipped rows without a name", "count", skipped)
	}
	return roster, nil
}

// Load reads the roster CSV at path.
func Load(path string) (*Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster: %w", err)
	}
	defer f.Close()

	roster, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return roster, nil
}

// Len returns the number of people.
func (r *Roster) Len() int {
	return len(r.People)
}

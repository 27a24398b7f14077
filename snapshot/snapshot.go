package snapshot

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/poiesic/scholarmatch/core"
	"github.com/poiesic/scholarmatch/identity"
)

// Decode reads one JSON object of string values from r, preserving key order.
// A repeated key keeps its first position and takes the last value.
// A null value decodes as the empty string.
func Decode(r io.Reader) ([]core.PersonRecord, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: expected object, got %v", ErrMalformed, tok)
	}

	records := []core.PersonRecord{}
	positions := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected key, got %v", ErrMalformed, tok)
		}

		var text *string
		if err := dec.Decode(&text); err != nil {
			return nil, fmt.Errorf("%w: value for %q: %w", ErrMalformed, name, err)
		}
		value := ""
		if text != nil {
			value = *text
		}

		if idx, seen := positions[name]; seen {
			records[idx].Text = value
			continue
		}
		positions[name] = len(records)
		records = append(records, core.PersonRecord{Name: name, Text: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after object", ErrMalformed)
	}

	return records, nil
}

// Encode writes records to w as an indented JSON object in slice order.
func Encode(w io.Writer, records []core.PersonRecord) error {
	bw := bufio.NewWriter(w)

	if len(records) == 0 {
		if _, err := bw.WriteString("{}\n"); err != nil {
			return err
		}
		return bw.Flush()
	}

	bw.WriteString("{\n")
	for i, rec := range records {
		key, err := marshalString(rec.Name)
		if err != nil {
			return err
		}
		value, err := marshalString(rec.Text)
		if err != nil {
			return err
		}
		bw.WriteString("    ")
		bw.Write(key)
		bw.WriteString(": ")
		bw.Write(value)
		if i < len(records)-1 {
			bw.WriteString(",")
		}
		bw.WriteString("\n")
	}
	bw.WriteString("}\n")

	return bw.Flush()
}

// marshalString encodes s without HTML escaping.
func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Load reads the snapshot file at path.
// A missing or malformed file is an error.
func Load(path string) ([]core.PersonRecord, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	records, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// LoadSource reads a snapshot file as a labelled merge source.
func LoadSource(label, path string) (identity.Source, error) {
	records, err := Load(path)
	if err != nil {
		return identity.Source{}, err
	}
	return identity.Source{Label: label, Records: records}, nil
}

// Save writes records to path, replacing any existing file.
// The file is written to a temporary sibling and renamed into place.
func Save(path string, records []core.PersonRecord) error {
	if path == "" {
		return ErrEmptyPath
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, records); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

package core

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateQuery(t *testing.T) {
	words := func(n int) string {
		return strings.TrimSpace(strings.Repeat("word ", n))
	}

	tests := []struct {
		name    string
		query   string
		wantErr error
	}{
		{name: "empty query", query: "", wantErr: ErrEmptyQuery},
		{name: "whitespace only", query: " \n\t ", wantErr: ErrEmptyQuery},
		{name: "19 words rejected", query: words(19), wantErr: ErrQueryTooShort},
		{name: "20 words accepted", query: words(20), wantErr: nil},
		{name: "irregular spacing counts words", query: "  " + strings.ReplaceAll(words(20), " ", "\n  "), wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuery(tt.query, DefaultMinQueryWords)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateQuery() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateQuery() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateProfile(t *testing.T) {
	tests := []struct {
		name    string
		profile *Profile
		wantErr error
	}{
		{
			name:    "valid profile",
			profile: &Profile{Metadata: Metadata{Name: "Jane Doe"}, Text: "cv text"},
		},
		{
			name:    "nil profile",
			profile: nil,
			wantErr: ErrInvalidProfile,
		},
		{
			name:    "empty name",
			profile: &Profile{Text: "cv text"},
			wantErr: ErrEmptyName,
		},
		{
			name:    "whitespace text",
			profile: &Profile{Metadata: Metadata{Name: "Jane Doe"}, Text: "  \n "},
			wantErr: ErrEmptyContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProfile(tt.profile)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateProfile() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateProfile() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidProfile) {
				t.Errorf("ValidateProfile() error should wrap ErrInvalidProfile")
			}
		})
	}
}

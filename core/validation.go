// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"strings"
)

// DefaultMinQueryWords is the minimum number of words a query must contain.
const DefaultMinQueryWords = 20

// WordCount returns the number of whitespace-delimited words in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ValidateQuery checks a free-text query against the word-count gate.
//
// Validation rules:
//   - Query must contain at least one word
//   - Query must contain at least minWords words
//
// Both failures are correctable by the user and should be reported as warnings.
func ValidateQuery(query string, minWords int) error {
	words := WordCount(query)
	if words == 0 {
		return ErrEmptyQuery
	}
	if words < minWords {
		return fmt.Errorf("%w: please provide at least %d words (got %d)", ErrQueryTooShort, minWords, words)
	}
	return nil
}

// ValidateProfile validates a Profile before it is chunked.
//
// Validation rules:
//   - Metadata.Name must not be empty
//   - Text must not be empty after trimming
func ValidateProfile(profile *Profile) error {
	if profile == nil {
		return fmt.Errorf("%w: profile is nil", ErrInvalidProfile)
	}

	if strings.TrimSpace(profile.Metadata.Name) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, ErrEmptyName)
	}

	if strings.TrimSpace(profile.Text) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, ErrEmptyContent)
	}

	return nil
}

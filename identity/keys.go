package identity

import (
	"fmt"
	"strings"
	"unicode"
)

// KeyStrategy derives the match key used to decide whether two names denote
// the same person. Implementations must be pure.
type KeyStrategy interface {
	DeriveKey(name string) string
}

// KeyFunc adapts a plain function to KeyStrategy.
type KeyFunc func(name string) string

// DeriveKey calls f(name).
func (f KeyFunc) DeriveKey(name string) string {
	return f(name)
}

// FirstTwoTokens keys a name by its first two whitespace-delimited tokens,
// joined by a single space. No case folding or punctuation stripping is done.
type FirstTwoTokens struct{}

// DeriveKey implements KeyStrategy.
func (FirstTwoTokens) DeriveKey(name string) string {
	tokens := strings.Fields(name)
	if len(tokens) > 2 {
		tokens = tokens[:2]
	}
	return strings.Join(tokens, " ")
}

// NormalizedFullName keys a name by all of its tokens, lower-cased with
// punctuation removed.
type NormalizedFullName struct{}

// DeriveKey implements KeyStrategy.
func (NormalizedFullName) DeriveKey(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, name)
	return strings.Join(strings.Fields(cleaned), " ")
}

// SkipInitials removes middle-initial tokens such as "A." or "A" before
// delegating to Inner. The first token is always kept.
type SkipInitials struct {
	Inner KeyStrategy
}

// DeriveKey implements KeyStrategy.
func (s SkipInitials) DeriveKey(name string) string {
	tokens := strings.Fields(name)
	kept := make([]string, 0, len(tokens))
	for i, tok := range tokens {
		if i > 0 && isInitial(tok) {
			continue
		}
		kept = append(kept, tok)
	}
	inner := s.Inner
	if inner == nil {
		inner = FirstTwoTokens{}
	}
	return inner.DeriveKey(strings.Join(kept, " "))
}

func isInitial(tok string) bool {
	r := []rune(strings.TrimSuffix(tok, "."))
	return len(r) == 1 && unicode.IsLetter(r[0])
}

// MatchKey returns the default key for name.
func MatchKey(name string) string {
	return FirstTwoTokens{}.DeriveKey(name)
}

// Strategy names accepted by StrategyByName.
const (
	StrategyFirstTwoTokens = "first-two-tokens"
	StrategyFullName       = "full-name"
	StrategySkipInitials   = "skip-initials"
)

// StrategyByName resolves a configured strategy name.
func StrategyByName(name string) (KeyStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategyFirstTwoTokens:
		return FirstTwoTokens{}, nil
	case StrategyFullName:
		return NormalizedFullName{}, nil
	case StrategySkipInitials:
		return SkipInitials{Inner: FirstTwoTokens{}}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

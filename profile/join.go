package profile

import (
	"fmt"
	"strings"

	"github.com/poiesic/scholarmatch/core"
	"github.com/poiesic/scholarmatch/identity"
	"github.com/poiesic/scholarmatch/roster"
)

// Corpus indexes merged person records by canonical name.
type Corpus struct {
	records []core.PersonRecord
	byName  map[string]int
}

// NewCorpus indexes records. A repeated name resolves to its first record.
func NewCorpus(records []core.PersonRecord) *Corpus {
	c := &Corpus{records: records, byName: make(map[string]int, len(records))}
	for i, r := range records {
		if _, ok := c.byName[r.Name]; !ok {
			c.byName[r.Name] = i
		}
	}
	return c
}

// Get returns the text stored under name.
func (c *Corpus) Get(name string) (string, bool) {
	idx, ok := c.byName[name]
	if !ok {
		return "", false
	}
	return c.records[idx].Text, true
}

// Records returns the indexed records in order.
func (c *Corpus) Records() []core.PersonRecord {
	return c.records
}

// JoinPolicy finds the merged text for a roster row.
type JoinPolicy interface {
	Join(person roster.Person, corpus *Corpus) (string, bool)
}

// JoinFunc adapts a plain function to JoinPolicy.
type JoinFunc func(person roster.Person, corpus *Corpus) (string, bool)

// Join calls f.
func (f JoinFunc) Join(person roster.Person, corpus *Corpus) (string, bool) {
	return f(person, corpus)
}

// ExactName joins when the canonical name equals the roster name.
func ExactName() JoinPolicy {
	return JoinFunc(func(p roster.Person, c *Corpus) (string, bool) {
		return c.Get(p.Name)
	})
}

// CVFilename joins on the "<name> CV.pdf" key.
func CVFilename() JoinPolicy {
	return JoinFunc(func(p roster.Person, c *Corpus) (string, bool) {
		return c.Get(p.CVKey())
	})
}

// MatchKey joins on the first record whose match key equals the roster
// name's key under strategy.
func MatchKey(strategy identity.KeyStrategy) JoinPolicy {
	return JoinFunc(func(p roster.Person, c *Corpus) (string, bool) {
		want := strategy.DeriveKey(p.Name)
		if want == "" {
			return "", false
		}
		for _, r := range c.records {
			if strategy.DeriveKey(r.Name) == want {
				return r.Text, true
			}
		}
		return "", false
	})
}

// Chain returns the result of the first policy that finds a record.
func Chain(policies ...JoinPolicy) JoinPolicy {
	return JoinFunc(func(p roster.Person, c *Corpus) (string, bool) {
		for _, policy := range policies {
			if text, ok := policy.Join(p, c); ok {
				return text, true
			}
		}
		return "", false
	})
}

// DefaultJoinPolicy is Chain(ExactName(), CVFilename()).
func DefaultJoinPolicy() JoinPolicy {
	return Chain(ExactName(), CVFilename())
}

// Join policy names accepted by JoinPolicyByName.
const (
	JoinDefault    = "default"
	JoinExact      = "exact"
	JoinCVFilename = "cv-filename"
	JoinMatchKey   = "match-key"
)

// JoinPolicyByName resolves a configured policy name. The match-key policy
// uses strategy, or identity.FirstTwoTokens when strategy is nil.
func JoinPolicyByName(name string, strategy identity.KeyStrategy) (JoinPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", JoinDefault:
		return DefaultJoinPolicy(), nil
	case JoinExact:
		return ExactName(), nil
	case JoinCVFilename:
		return CVFilename(), nil
	case JoinMatchKey:
		if strategy == nil {
			strategy = identity.FirstTwoTokens{}
		}
		return Chain(ExactName(), CVFilename(), MatchKey(strategy)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownJoinPolicy, name)
	}
}

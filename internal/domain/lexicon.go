package domain

import (
	"fmt"
	"strings"
)

// AspectDefinition is the raw input for one lexicon entry.
type AspectDefinition struct {
	Name    string   `yaml:"name" json:"name"`
	Phrases []string `yaml:"phrases" json:"phrases"`
}

// AspectLexicon maps aspect names to keyword phrases. It is built once and
// never mutated afterwards, so it can be shared across goroutines.
type AspectLexicon struct {
	aspects []aspectEntry
}

type aspectEntry struct {
	name    string
	phrases []string
}

// NewAspectLexicon validates defs and returns an immutable lexicon. Aspects
// keep their declaration order; phrases are lower-cased and trimmed. Phrases
// may be shared between aspects.
func NewAspectLexicon(defs []AspectDefinition) (AspectLexicon, error) {
	if len(defs) == 0 {
		return AspectLexicon{}, fmt.Errorf("%w: no aspects defined", ErrInvalidLexicon)
	}
	seen := make(map[string]struct{}, len(defs))
	entries := make([]aspectEntry, 0, len(defs))
	for _, d := range defs {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			return AspectLexicon{}, fmt.Errorf("%w: aspect with empty name", ErrInvalidLexicon)
		}
		if _, dup := seen[name]; dup {
			return AspectLexicon{}, fmt.Errorf("%w: duplicate aspect %q", ErrInvalidLexicon, name)
		}
		seen[name] = struct{}{}

		phrases := make([]string, 0, len(d.Phrases))
		for _, p := range d.Phrases {
			if t := strings.ToLower(strings.TrimSpace(p)); t != "" {
				phrases = append(phrases, t)
			}
		}
		if len(phrases) == 0 {
			return AspectLexicon{}, fmt.Errorf("%w: aspect %q has no phrases", ErrInvalidLexicon, name)
		}
		entries = append(entries, aspectEntry{name: name, phrases: phrases})
	}
	return AspectLexicon{aspects: entries}, nil
}

// Aspects returns aspect names in declaration order.
func (l AspectLexicon) Aspects() []string {
	out := make([]string, len(l.aspects))
	for i, a := range l.aspects {
		out[i] = a.name
	}
	return out
}

// Phrases returns a copy of the phrases for aspect, or nil if unknown.
func (l AspectLexicon) Phrases(aspect string) []string {
	for _, a := range l.aspects {
		if a.name == aspect {
			return append([]string(nil), a.phrases...)
		}
	}
	return nil
}

func (l AspectLexicon) Len() int { return len(l.aspects) }

// Each calls fn for every aspect in declaration order. fn must not retain
// the phrases slice.
func (l AspectLexicon) Each(fn func(aspect string, phrases []string)) {
	for _, a := range l.aspects {
		fn(a.name, a.phrases)
	}
}

// Definitions returns a deep copy of the lexicon as raw definitions.
func (l AspectLexicon) Definitions() []AspectDefinition {
	out := make([]AspectDefinition, len(l.aspects))
	for i, a := range l.aspects {
		out[i] = AspectDefinition{Name: a.name, Phrases: append([]string(nil), a.phrases...)}
	}
	return out
}

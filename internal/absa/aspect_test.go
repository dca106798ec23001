package absa_test

import (
	"reflect"
	"testing"

	"review_absa/internal/absa"
	"review_absa/internal/domain"
	"review_absa/internal/lexicon"
)

func TestMatcher_MultiAspectClause(t *testing.T) {
	m := absa.NewMatcher(lexicon.Default())
	got := m.Match("screen is beautiful and performance is fast")
	want := []string{"display", "performance"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Match = %v, want %v", got, want)
	}
}

func TestMatcher_CaseInsensitiveSubstring(t *testing.T) {
	m := absa.NewMatcher(lexicon.Default())
	if got := m.Match("The BATTERY LIFE is short"); !reflect.DeepEqual(got, []string{"battery"}) {
		t.Fatalf("unexpected match: %v", got)
	}
	// substring semantics: "photos" contains "photo"
	if got := m.Match("stunning photos"); !reflect.DeepEqual(got, []string{"camera"}) {
		t.Fatalf("unexpected match: %v", got)
	}
}

func TestMatcher_NoAspect(t *testing.T) {
	m := absa.NewMatcher(lexicon.Default())
	if got := m.Match("I really like it"); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestMatcher_SharedPhrase(t *testing.T) {
	lex, err := domain.NewAspectLexicon([]domain.AspectDefinition{
		{Name: "a", Phrases: []string{"shared"}},
		{Name: "b", Phrases: []string{"other", "shared"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	got := absa.NewMatcher(lex).Match("a Shared phrase")
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("unexpected match: %v", got)
	}
}

// Package lexicon loads aspect lexicons from YAML and provides the built-in
// consumer-electronics lexicon.
package lexicon

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"review_absa/internal/domain"
)

type file struct {
	Aspects []domain.AspectDefinition `yaml:"aspects"`
}

// defaults mirrors the keyword dictionary the classifier was trained against.
var defaults = []domain.AspectDefinition{
	{Name: "battery", Phrases: []string{"battery", "battery life", "charge", "charging"}},
	{Name: "camera", Phrases: []string{"camera", "photo", "picture", "video"}},
	{Name: "display", Phrases: []string{"screen", "display", "resolution"}},
	{Name: "performance", Phrases: []string{"performance", "speed", "lag", "slow", "fast"}},
	{Name: "build", Phrases: []string{"build quality", "design", "material"}},
	{Name: "price", Phrases: []string{"price", "cost", "value", "worth"}},
}

// Default returns the built-in lexicon.
func Default() domain.AspectLexicon {
	lex, err := domain.NewAspectLexicon(defaults)
	if err != nil {
		panic(err) // static data
	}
	return lex
}

// Load decodes a YAML lexicon of the form
//
//	aspects:
//	  - name: battery
//	    phrases: [battery, battery life]
func Load(r io.Reader) (domain.AspectLexicon, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return domain.AspectLexicon{}, fmt.Errorf("%w: empty document", domain.ErrInvalidLexicon)
		}
		return domain.AspectLexicon{}, fmt.Errorf("%w: decode yaml: %v", domain.ErrInvalidLexicon, err)
	}
	return domain.NewAspectLexicon(f.Aspects)
}

// LoadFile reads a lexicon from path. An empty path yields the default lexicon.
func LoadFile(path string) (domain.AspectLexicon, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return domain.AspectLexicon{}, fmt.Errorf("open lexicon: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Marshal renders lex in the same YAML shape Load accepts.
func Marshal(lex domain.AspectLexicon) ([]byte, error) {
	return yaml.Marshal(file{Aspects: lex.Definitions()})
}

package brand

import (
	_ "embed"
	"fmt"
	"math/rand/v2"

	"gopkg.in/yaml.v2"

	"logoforge/internal/domain"
)

// StyleDescriptor is the visual treatment attached to a style key.
type StyleDescriptor struct {
	Key           domain.StyleKey `yaml:"key" json:"key"`
	Label         string          `yaml:"label" json:"label"`
	VisualVariant string          `yaml:"variant" json:"visualVariant"`
	AccentColor   string          `yaml:"accent" json:"accentColor"`
	ImageKey      string          `yaml:"image" json:"imageKey"`
}

// SurprisePrompt is a canned prompt offered by the "surprise me" action.
type SurprisePrompt struct {
	Prompt string          `yaml:"prompt" json:"prompt"`
	Style  domain.StyleKey `yaml:"style" json:"logoStyle"`
}

type catalog struct {
	Styles   []StyleDescriptor `yaml:"styles"`
	Surprise []SurprisePrompt  `yaml:"surprise"`
}

//go:embed catalog.yaml
var catalogYAML []byte

var (
	styles   map[domain.StyleKey]StyleDescriptor
	ordered  []StyleDescriptor
	surprise []SurprisePrompt
)

func init() {
	c, err := parseCatalog(catalogYAML)
	if err != nil {
		panic(err)
	}
	ordered = c.Styles
	surprise = c.Surprise
	styles = make(map[domain.StyleKey]StyleDescriptor, len(c.Styles))
	for _, s := range c.Styles {
		styles[s.Key] = s
	}
}

func parseCatalog(raw []byte) (*catalog, error) {
	var c catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("brand: parse catalog: %w", err)
	}
	seen := make(map[domain.StyleKey]bool, len(c.Styles))
	for _, s := range c.Styles {
		if !s.Key.Valid() {
			return nil, fmt.Errorf("brand: unknown style key %q in catalog", s.Key)
		}
		seen[s.Key] = true
	}
	for _, k := range domain.StyleKeys {
		if !seen[k] {
			return nil, fmt.Errorf("brand: catalog is missing style %q", k)
		}
	}
	for i, p := range c.Surprise {
		if !p.Style.Valid() {
			return nil, fmt.Errorf("brand: surprise prompt %d has unknown style %q", i, p.Style)
		}
	}
	return &c, nil
}

// Style returns the descriptor for key, falling back to the no-style
// descriptor for unknown keys.
func Style(key domain.StyleKey) StyleDescriptor {
	if s, ok := styles[key]; ok {
		return s
	}
	return styles[domain.StyleNoStyle]
}

// Styles lists every descriptor in display order.
func Styles() []StyleDescriptor {
	return append([]StyleDescriptor(nil), ordered...)
}

// SurprisePrompts lists the canned prompts.
func SurprisePrompts() []SurprisePrompt {
	return append([]SurprisePrompt(nil), surprise...)
}

// Surprise picks a random canned prompt.
func Surprise() SurprisePrompt {
	return surprise[rand.IntN(len(surprise))]
}

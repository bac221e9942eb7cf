// Package vocab holds the keyword tables behind every heuristic in the
// pipeline. A Vocabulary is plain data: load the embedded default, override
// it from a YAML file, or build one in a test.
package vocab

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Category is a named keyword list.
type Category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// City is a canonical city name and the keywords that identify it.
type City struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Activity is the meetup template for an interest category.
type Activity struct {
	Title string `yaml:"title"`
	Emoji string `yaml:"emoji"`
}

// LinkRule maps URL host suffixes to a link type.
type LinkRule struct {
	Type    string   `yaml:"type"`
	Domains []string `yaml:"domains"`
}

// Vocabulary is the full set of lookup tables. Treat it as read-only once
// handed to pipeline functions.
type Vocabulary struct {
	Cities             []City              `yaml:"cities"`
	Interests          []Category          `yaml:"interests"`
	Affinities         []Category          `yaml:"affinities"`
	SystemEvents       []string            `yaml:"system_events"`
	MediaMarkers       []string            `yaml:"media_markers"`
	CasualMarkers      []string            `yaml:"casual_markers"`
	Activities         map[string]Activity `yaml:"activities"`
	ExperienceBuckets  []Category          `yaml:"experience_buckets"`
	ComplementaryRoles [][]string          `yaml:"complementary_roles"`
	LinkDomains        []LinkRule          `yaml:"link_domains"`
	StopWords          []string            `yaml:"stop_words"`

	once      sync.Once
	aliases   map[string]string
	stopWords map[string]struct{}
}

var (
	defaultOnce  sync.Once
	defaultVocab *Vocabulary
)

// Default returns the embedded vocabulary. The returned value is shared.
func Default() *Vocabulary {
	defaultOnce.Do(func() {
		v, err := decode(defaultYAML)
		if err != nil {
			panic(fmt.Sprintf("vocab: embedded default is invalid: %v", err))
		}
		defaultVocab = v
	})
	return defaultVocab
}

// Parse decodes a vocabulary from YAML. Sections missing from data are
// taken from the embedded default, so override files only need the tables
// they change.
func Parse(data []byte) (*Vocabulary, error) {
	v, err := decode(defaultYAML)
	if err != nil {
		return nil, fmt.Errorf("decode default vocabulary: %w", err)
	}
	override, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode vocabulary: %w", err)
	}
	v.merge(override)
	return v, nil
}

func decode(data []byte) (*Vocabulary, error) {
	v := &Vocabulary{}
	if err := yaml.Unmarshal(data, v); err != nil {
		return nil, err
	}
	return v, nil
}

// LoadFile reads a vocabulary override file. An empty path returns Default.
func LoadFile(path string) (*Vocabulary, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	return Parse(data)
}

func (v *Vocabulary) merge(o *Vocabulary) {
	if o.Cities != nil {
		v.Cities = o.Cities
	}
	if o.Interests != nil {
		v.Interests = o.Interests
	}
	if o.Affinities != nil {
		v.Affinities = o.Affinities
	}
	if o.SystemEvents != nil {
		v.SystemEvents = o.SystemEvents
	}
	if o.MediaMarkers != nil {
		v.MediaMarkers = o.MediaMarkers
	}
	if o.CasualMarkers != nil {
		v.CasualMarkers = o.CasualMarkers
	}
	if o.Activities != nil {
		v.Activities = o.Activities
	}
	if o.ExperienceBuckets != nil {
		v.ExperienceBuckets = o.ExperienceBuckets
	}
	if o.ComplementaryRoles != nil {
		v.ComplementaryRoles = o.ComplementaryRoles
	}
	if o.LinkDomains != nil {
		v.LinkDomains = o.LinkDomains
	}
	if o.StopWords != nil {
		v.StopWords = o.StopWords
	}
}

func (v *Vocabulary) index() {
	v.once.Do(func() {
		v.aliases = make(map[string]string)
		for _, c := range v.Cities {
			v.aliases[strings.ToLower(c.Name)] = c.Name
			for _, kw := range c.Keywords {
				v.aliases[strings.ToLower(kw)] = c.Name
			}
		}
		v.stopWords = make(map[string]struct{}, len(v.StopWords))
		for _, w := range v.StopWords {
			v.stopWords[strings.ToLower(w)] = struct{}{}
		}
	})
}

// NormalizeCity maps a city name or alias to its canonical name. Unknown
// names come back trimmed and unchanged.
func (v *Vocabulary) NormalizeCity(name string) string {
	v.index()
	trimmed := strings.TrimSpace(name)
	if canonical, ok := v.aliases[strings.ToLower(trimmed)]; ok {
		return canonical
	}
	return trimmed
}

// ActivityFor returns the meetup template for an interest category.
func (v *Vocabulary) ActivityFor(category string) Activity {
	if a, ok := v.Activities[category]; ok {
		return a
	}
	return Activity{Title: category + " meetup", Emoji: "📍"}
}

// IsStopWord reports whether w carries no matching signal.
func (v *Vocabulary) IsStopWord(w string) bool {
	v.index()
	_, ok := v.stopWords[strings.ToLower(w)]
	return ok
}

// Bucket returns the first experience bucket whose keywords occur in text.
func (v *Vocabulary) Bucket(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, b := range v.ExperienceBuckets {
		for _, kw := range b.Keywords {
			if strings.Contains(lower, kw) {
				return b.Name, true
			}
		}
	}
	return "", false
}

// LinkType classifies a URL host. Hosts match a domain exactly or as a
// subdomain of it.
func (v *Vocabulary) LinkType(host string) string {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	for _, rule := range v.LinkDomains {
		for _, d := range rule.Domains {
			if host == d || strings.HasSuffix(host, "."+d) {
				return rule.Type
			}
		}
	}
	return "other"
}

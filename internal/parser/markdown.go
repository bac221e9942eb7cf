package parser

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/raphaelgruber/circlemap/internal/models"
)

var (
	h1Regex      = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	headingRegex = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	bulletRegex  = regexp.MustCompile(`^\s*(?:[-*+]|\d+\.)\s+(.+)$`)
)

// ContactNote is an organizer's Markdown note about one member.
//
//	---
//	role: Staff Engineer
//	company: Stripe
//	lookingFor: [co-founder]
//	---
//	# Sarah Kim
//	## Struggles
//	- burnout after the Series B
type ContactNote struct {
	// Frontmatter decoded onto the overlay fields.
	Frontmatter models.Overlay

	// Name from frontmatter or the first h1.
	Name string

	Sections []Section
}

// Section is a heading and the list items below it.
type Section struct {
	Level   int
	Heading string
	Items   []string
	Text    string // non-list lines, trimmed
}

// ParseContactNote parses a contact note. Malformed frontmatter is an error;
// a note without frontmatter is fine.
func ParseContactNote(content string) (*ContactNote, error) {
	note := &ContactNote{}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	body := content
	if strings.HasPrefix(content, "---\n") {
		endIdx := strings.Index(content[4:], "\n---")
		if endIdx >= 0 {
			fm := content[4 : 4+endIdx]
			body = strings.TrimPrefix(content[4+endIdx+4:], "\n")
			if err := yaml.Unmarshal([]byte(fm), &note.Frontmatter); err != nil {
				return nil, fmt.Errorf("parse frontmatter: %w", err)
			}
		}
	}

	note.Name = note.Frontmatter.Name
	if note.Name == "" {
		if m := h1Regex.FindStringSubmatch(body); m != nil {
			note.Name = strings.TrimSpace(m[1])
		}
	}
	note.Sections = parseSections(body)

	return note, nil
}

func parseSections(content string) []Section {
	var sections []Section
	var current *Section
	var text strings.Builder

	flush := func() {
		if current == nil {
			return
		}
		current.Text = strings.TrimSpace(text.String())
		sections = append(sections, *current)
		text.Reset()
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := scanner.Text()
		if m := headingRegex.FindStringSubmatch(line); m != nil {
			flush()
			current = &Section{Level: len(m[1]), Heading: strings.TrimSpace(m[2])}
			continue
		}
		if current == nil {
			continue
		}
		if m := bulletRegex.FindStringSubmatch(line); m != nil {
			current.Items = append(current.Items, strings.TrimSpace(m[1]))
			continue
		}
		text.WriteString(line)
		text.WriteString("\n")
	}
	flush()

	return sections
}

// Section returns the items of the first section whose heading matches name,
// ignoring case, spaces and dashes.
func (n *ContactNote) Section(name string) []string {
	want := sectionKey(name)
	for _, s := range n.Sections {
		if sectionKey(s.Heading) == want {
			return s.Items
		}
	}
	return nil
}

func sectionKey(s string) string {
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(s))
}

// Overlay converts the note into an overlay. Body sections extend the
// frontmatter lists and fill the deep sections they name.
func (n *ContactNote) Overlay() models.Overlay {
	o := n.Frontmatter
	o.Name = n.Name
	o.Sources = appendUnique(o.Sources, "note")

	o.Expertise = appendUnique(o.Expertise, n.Section("expertise")...)
	o.LookingFor = appendUnique(o.LookingFor, n.Section("looking for")...)
	o.Offering = appendUnique(o.Offering, n.Section("offering")...)
	o.Interests = appendUnique(o.Interests, n.Section("interests")...)

	if items := n.Section("struggles"); items != nil {
		o.Experiences = ensureExperiences(o.Experiences)
		o.Experiences.Struggles = appendUnique(o.Experiences.Struggles, items...)
	}
	if items := n.Section("achievements"); items != nil {
		o.Experiences = ensureExperiences(o.Experiences)
		o.Experiences.Achievements = appendUnique(o.Experiences.Achievements, items...)
	}
	if items := n.Section("transformations"); items != nil {
		o.Experiences = ensureExperiences(o.Experiences)
		o.Experiences.Transformations = appendUnique(o.Experiences.Transformations, items...)
	}

	if items := n.Section("communities"); items != nil {
		o.Scenes = ensureScenes(o.Scenes)
		o.Scenes.Communities = appendUnique(o.Scenes.Communities, items...)
	}
	if items := n.Section("venues"); items != nil {
		o.Scenes = ensureScenes(o.Scenes)
		o.Scenes.Venues = appendUnique(o.Scenes.Venues, items...)
	}

	if items := n.Section("influences"); items != nil {
		if o.DeepInterests == nil {
			o.DeepInterests = &models.DeepInterests{}
		} else {
			di := *o.DeepInterests
			o.DeepInterests = &di
		}
		o.DeepInterests.Influences = appendUnique(o.DeepInterests.Influences, items...)
	}

	if items := n.Section("causes"); items != nil {
		if o.Values == nil {
			o.Values = &models.Values{}
		} else {
			v := *o.Values
			o.Values = &v
		}
		o.Values.Causes = appendUnique(o.Values.Causes, items...)
	}

	return o
}

func ensureExperiences(e *models.Experiences) *models.Experiences {
	if e == nil {
		return &models.Experiences{}
	}
	cp := *e
	return &cp
}

func ensureScenes(s *models.Scenes) *models.Scenes {
	if s == nil {
		return &models.Scenes{}
	}
	cp := *s
	return &cp
}

// appendUnique appends items not already present (case-insensitive) into a
// fresh slice. Returns nil when nothing remains.
func appendUnique(dst []string, items ...string) []string {
	out := make([]string, 0, len(dst)+len(items))
	seen := make(map[string]bool, len(dst)+len(items))
	for _, s := range append(append([]string{}, dst...), items...) {
		k := strings.ToLower(strings.TrimSpace(s))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

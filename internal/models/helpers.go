package models

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// RecordIDString safely extracts the string ID from a SurrealDB RecordID.
// Returns an error if the ID is not a string type.
func RecordIDString(id surrealmodels.RecordID) (string, error) {
	s, ok := id.ID.(string)
	if !ok {
		return "", fmt.Errorf("unexpected ID type: %T (expected string)", id.ID)
	}
	return s, nil
}

// Slugify turns a display name into a profile ID. Letters and digits are
// kept in lower case, in any script; spaces and underscores become hyphens.
func Slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-':
			b.WriteRune(r)
		case r == ' ' || r == '_':
			b.WriteRune('-')
		}
	}
	return b.String()
}

// ProfileID is the slug of name, or "m-" plus a hash of the name when the
// slug is empty (emoji-only names, for example).
func ProfileID(name string) string {
	if slug := Slugify(name); slug != "" {
		return slug
	}
	return "m-" + NameHash(name)
}

// NameHash is a short stable hash of a display name.
func NameHash(name string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return fmt.Sprintf("%08x", h.Sum32())
}

// Package tag defines the tags quicklog entries are labelled with and the
// symmetric links between them.
package tag

import (
	"fmt"
	"strings"
)

// Category groups tags for display. It has no effect on linking or suggestions.
type Category string

const (
	// CategoryPerson is a tag for people ("Me", "Family").
	CategoryPerson Category = "PERSON"
	// CategoryActivity is a tag for things being done ("Work", "Meal").
	CategoryActivity Category = "ACTIVITY"
	// CategoryPlace is a tag for where something happened.
	CategoryPlace Category = "PLACE"
	// CategoryContext is a tag for the circumstances ("Focus", "Relax").
	CategoryContext Category = "CONTEXT"
	// CategoryMood is a tag for how it felt.
	CategoryMood Category = "MOOD"
	// CategoryCustom is used for user-created and imported tags.
	CategoryCustom Category = "CUSTOM"
)

// AllCategories returns the supported categories in display order.
func AllCategories() []Category {
	return []Category{
		CategoryPerson,
		CategoryActivity,
		CategoryPlace,
		CategoryContext,
		CategoryMood,
		CategoryCustom,
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, candidate := range AllCategories() {
		if candidate == c {
			return true
		}
	}
	return false
}

// Title renders the category as "Person", "Activity", ...
func (c Category) Title() string {
	s := string(c)
	if s == "" {
		return ""
	}
	return s[:1] + strings.ToLower(s[1:])
}

// ParseCategory converts raw to a Category. Matching is case-insensitive; an
// empty value is CUSTOM. Unknown values return CUSTOM together with an error so
// importers can fall back without failing the row.
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(raw)))
	if c == "" {
		return CategoryCustom, nil
	}
	if c.Valid() {
		return c, nil
	}
	return CategoryCustom, fmt.Errorf("tag: unknown category %q", raw)
}

// MustCategory parses the input and panics on error. Intended for tests.
func MustCategory(raw string) Category {
	c, err := ParseCategory(raw)
	if err != nil {
		panic(err)
	}
	return c
}

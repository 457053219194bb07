package domain

import (
	"fmt"
	"strings"
)

// Category is one of the three fixed tag categories.
type Category string

// Tag categories.
const (
	CategorySource  Category = "source"
	CategoryTopic   Category = "topic"
	CategoryConcept Category = "concept"
)

// Categories lists every valid category.
var Categories = []Category{CategorySource, CategoryTopic, CategoryConcept}

// Color is a display color in #RRGGBB form.
type Color string

// Enforced palette.
const (
	ColorBlue   Color = "#3B82F6"
	ColorPurple Color = "#8B5CF6"
	ColorGreen  Color = "#10B981"
	// ColorNeutral is only returned for categories outside the fixed set,
	// which the store refuses to persist.
	ColorNeutral Color = "#6B7280"
)

// ColorFor is the category policy: the single place a tag color is decided.
func ColorFor(c Category) Color {
	switch c {
	case CategorySource:
		return ColorBlue
	case CategoryTopic:
		return ColorPurple
	case CategoryConcept:
		return ColorGreen
	default:
		return ColorNeutral
	}
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	switch c {
	case CategorySource, CategoryTopic, CategoryConcept:
		return true
	default:
		return false
	}
}

// String returns the category name.
func (c Category) String() string {
	return string(c)
}

// ParseCategory accepts a category name in any casing.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q (must be source, topic, or concept)", s)
	}
	return c, nil
}

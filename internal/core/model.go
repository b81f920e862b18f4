package core

import (
	"fmt"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category is the disposal category assigned to a scanned item
type Category string

const (
	CategoryRecyclable Category = "recyclable"
	CategoryCompost    Category = "compost"
	CategoryTrash      Category = "trash"
)

// Categories lists every known category
var Categories = []Category{CategoryRecyclable, CategoryCompost, CategoryTrash}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	switch c {
	case CategoryRecyclable, CategoryCompost, CategoryTrash:
		return true
	}
	return false
}

// DisplayName returns the category name formatted for presentation
func (c Category) DisplayName() string {
	return cases.Title(language.English).String(string(c))
}

// ParseCategory converts a string into a Category
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// LabelCandidate is one ranked label returned by a vision provider
type LabelCandidate struct {
	Label      string
	Confidence float64
}

// ClassificationResult represents the outcome of classifying one image
type ClassificationResult struct {
	Label        string
	Category     Category
	Confidence   float64
	ClassifiedAt time.Time
	ModelUsed    string
}

// Item is a durably persisted record of one classified-and-saved scan
type Item struct {
	ID         string
	Name       string
	Category   Category
	Confidence float64
	Timestamp  time.Time
	Image      []byte
}

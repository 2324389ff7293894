// Package portfolio provides a client for the portfolio platform REST API.
//
// This package enables folio to:
// - Look up the highest portfolio id for a category and filter
// - Page through portfolios below a given id, optionally by filter tag
// - Search portfolios by keyword
// - Fetch a single portfolio's details
package portfolio

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Category is one of the fixed portfolio categories.
type Category string

const (
	CategoryAll          Category = "All"
	CategoryDevelop      Category = "Develop"
	CategoryDesign       Category = "Design"
	CategoryPhotographer Category = "Photographer"
)

// FilterAll is the filter tag meaning "no filter" in every category.
const FilterAll = "All"

var categories = []Category{CategoryAll, CategoryDevelop, CategoryDesign, CategoryPhotographer}

var filterTable = map[Category][]string{
	CategoryAll:          {FilterAll},
	CategoryDevelop:      {FilterAll, "Frontend", "Backend", "Fullstack", "Mobile", "DevOps", "Data"},
	CategoryDesign:       {FilterAll, "UI/UX", "Graphic", "Illustration", "Branding", "Motion"},
	CategoryPhotographer: {FilterAll, "Portrait", "Landscape", "Product", "Fashion", "Wedding"},
}

// Categories returns every category in display order.
func Categories() []Category {
	return slices.Clone(categories)
}

// ParseCategory resolves a category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	for _, c := range categories {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	_, ok := filterTable[c]
	return ok
}

// Filters returns the filter tags offered for the category, FilterAll first.
func (c Category) Filters() []string {
	return slices.Clone(filterTable[c])
}

// ResolveFilter returns the canonical spelling of filter within c.
func (c Category) ResolveFilter(filter string) (string, bool) {
	for _, f := range filterTable[c] {
		if strings.EqualFold(f, strings.TrimSpace(filter)) {
			return f, true
		}
	}
	return "", false
}

// Summary is a portfolio as shown in list views.
type Summary struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Nickname     string    `json:"nickname"`
	Category     Category  `json:"category"`
	Filter       string    `json:"filter"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	Views        int64     `json:"views"`
	Likes        int64     `json:"likes"`
	CreatedAt    time.Time `json:"created_at"`
}

// Detail is a single portfolio with its full content.
type Detail struct {
	Summary
	UserID       int64    `json:"user_id"`
	Introduction string   `json:"introduction"`
	Skills       []string `json:"skills"`
	Links        []string `json:"links"`
}

// SearchPage is one page of keyword search results.
type SearchPage struct {
	Items         []Summary `json:"items"`
	Page          int       `json:"page"`
	Size          int       `json:"size"`
	TotalPages    int       `json:"total_pages"`
	TotalElements int64     `json:"total_elements"`
}

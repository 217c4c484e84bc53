package crawler

import (
	"context"
	"io"
	"strings"
	"time"
)

// Condition is the assessed state of a listed item
type Condition string

const (
	ConditionNew  Condition = "New"
	ConditionUsed Condition = "Used"
)

// ParseCondition maps free text such as "NEW" or "used" onto a Condition
func ParseCondition(s string) (Condition, bool) {
	s = strings.TrimSpace(s)
	switch {
	case strings.EqualFold(s, string(ConditionNew)):
		return ConditionNew, true
	case strings.EqualFold(s, string(ConditionUsed)):
		return ConditionUsed, true
	}
	return "", false
}

// Listing represents one normalized ad scraped from a category page
type Listing struct {
	SourceID  string    `json:"source_id"`
	Title     string    `json:"title"`
	Price     int       `json:"price"`
	Condition Condition `json:"condition"`
	Link      string    `json:"link"`
	Category  string    `json:"category"`
}

// Page is the single page session shared by all categories of a run.
// Navigate loads a URL; Content waits until waitSelector matches at least one
// element (bounded by timeout) and returns the rendered HTML.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Content(ctx context.Context, waitSelector string, timeout time.Duration) (io.Reader, error)
	Close() error
}

// Selectors contains CSS selectors for the listing elements of a category page
type Selectors struct {
	Listing   string
	Title     string
	Price     string
	Condition string
	Link      string
	// IDAttr is the attribute of the listing element carrying the stable ad id
	IDAttr string
}

// DefaultSelectors returns the selectors of the marketplace listing grid
func DefaultSelectors() Selectors {
	return Selectors{
		Listing:   "[class*='AdItem_adOuterHolder']",
		Title:     "[class*='AdItem_name']",
		Price:     "[class*='AdItem_price']",
		Condition: "[class*='AdItem_condition']",
		Link:      "a",
		IDAttr:    "id",
	}
}

// ConditionRules holds the locale-specific condition classification
type ConditionRules struct {
	// DefaultText is used when a listing has no condition element
	DefaultText string
	// NewMarker marks a listing as new when found in its condition text
	NewMarker string
}

// DefaultConditionRules returns the Serbian marketplace condition rules
func DefaultConditionRules() ConditionRules {
	return ConditionRules{
		DefaultText: "Polovno",
		NewMarker:   "novo",
	}
}

// CrawlerConfig contains configuration for a category crawler
type CrawlerConfig struct {
	BaseURL        string
	Categories     []string
	RetryAttempts  int
	RetryDelay     time.Duration
	CategoryDelay  time.Duration
	WaitTimeout    time.Duration
	Selectors      Selectors
	ConditionRules ConditionRules
	PriceRules     PriceRules
}

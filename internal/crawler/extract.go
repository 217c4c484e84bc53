package crawler

import (
	"fmt"
	"io"
	"strings"

	dealerrors "sjsage522/geardealworker/pkg/errors"

	"github.com/PuerkitoBio/goquery"
)

// Extractor turns a rendered category page into listings
type Extractor struct {
	BaseURL        string
	Selectors      Selectors
	ConditionRules ConditionRules
	PriceRules     PriceRules
}

// NewExtractor creates an extractor with the marketplace defaults
func NewExtractor(baseURL string) *Extractor {
	return &Extractor{
		BaseURL:        strings.TrimRight(baseURL, "/"),
		Selectors:      DefaultSelectors(),
		ConditionRules: DefaultConditionRules(),
		PriceRules:     DefaultPriceRules(),
	}
}

// ExtractResult counts what happened to the elements of one page
type ExtractResult struct {
	Found      int
	Added      int
	Duplicates int
	NoPrice    int
	Skipped    int
}

// Extract parses the page and appends every new, priced listing to state.
// A broken element is skipped without affecting the rest of the page.
func (e *Extractor) Extract(page io.Reader, category string, state *RunState) (ExtractResult, error) {
	var result ExtractResult

	doc, err := goquery.NewDocumentFromReader(page)
	if err != nil {
		return result, dealerrors.NewExtraction(category, "failed to parse HTML", err)
	}

	selections := doc.Find(e.Selectors.Listing)
	result.Found = selections.Length()

	selections.Each(func(_ int, s *goquery.Selection) {
		id, ok := s.Attr(e.Selectors.IDAttr)
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			result.Skipped++
			return
		}
		if !state.MarkSeen(id) {
			result.Duplicates++
			return
		}

		listing, err := e.processListing(s, id, category)
		if err != nil {
			result.Skipped++
			return
		}
		if listing == nil {
			result.NoPrice++
			return
		}

		state.Add(*listing)
		result.Added++
	})

	return result, nil
}

// processListing reads one listing element. A nil listing with a nil error means
// the ad carries no usable price.
func (e *Extractor) processListing(s *goquery.Selection, id, category string) (*Listing, error) {
	titleSel := s.Find(e.Selectors.Title).First()
	if titleSel.Length() == 0 {
		return nil, fmt.Errorf("listing %s: missing title", id)
	}
	title := strings.TrimSpace(titleSel.Text())

	priceSel := s.Find(e.Selectors.Price).First()
	if priceSel.Length() == 0 {
		return nil, fmt.Errorf("listing %s: missing price", id)
	}

	linkSel := s.Find(e.Selectors.Link).First()
	href, exists := linkSel.Attr("href")
	if !exists || strings.TrimSpace(href) == "" {
		return nil, fmt.Errorf("listing %s: missing link", id)
	}

	conditionText := e.ConditionRules.DefaultText
	if condSel := s.Find(e.Selectors.Condition).First(); condSel.Length() > 0 {
		conditionText = condSel.Text()
	}

	price, ok := e.PriceRules.Normalize(priceSel.Text())
	if !ok {
		return nil, nil
	}

	return &Listing{
		SourceID:  id,
		Title:     title,
		Price:     price,
		Condition: e.classifyCondition(conditionText),
		Link:      e.BaseURL + strings.TrimSpace(href),
		Category:  category,
	}, nil
}

func (e *Extractor) classifyCondition(text string) Condition {
	if strings.Contains(strings.ToLower(text), strings.ToLower(e.ConditionRules.NewMarker)) {
		return ConditionNew
	}
	return ConditionUsed
}

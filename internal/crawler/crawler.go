package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"sjsage522/geardealworker/logger"
	dealerrors "sjsage522/geardealworker/pkg/errors"
)

const categoryPathFormat = "%s/muzicki-instrumenti/%s/pretraga?categoryId=22&groupId=791&currency=eur&period=today"

// CategoryStatus is the terminal state of one category in a run
type CategoryStatus string

const (
	StatusExtracted CategoryStatus = "extracted"
	StatusFailed    CategoryStatus = "failed"
)

// CategoryReport describes how one category went
type CategoryReport struct {
	Category string
	Status   CategoryStatus
	Attempts int
	Result   ExtractResult
	Err      error
}

// CategoryCrawler drives the extractor across the configured categories one by one
type CategoryCrawler struct {
	config    CrawlerConfig
	page      Page
	extractor *Extractor
	sleep     func(context.Context, time.Duration) error
}

// NewCategoryCrawler creates a crawler using page as the shared page session
func NewCategoryCrawler(config CrawlerConfig, page Page) *CategoryCrawler {
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.RetryAttempts < 1 {
		config.RetryAttempts = 1
	}
	if config.Selectors == (Selectors{}) {
		config.Selectors = DefaultSelectors()
	}
	if config.ConditionRules == (ConditionRules{}) {
		config.ConditionRules = DefaultConditionRules()
	}
	if config.PriceRules == (PriceRules{}) {
		config.PriceRules = DefaultPriceRules()
	}

	return &CategoryCrawler{
		config: config,
		page:   page,
		extractor: &Extractor{
			BaseURL:        config.BaseURL,
			Selectors:      config.Selectors,
			ConditionRules: config.ConditionRules,
			PriceRules:     config.PriceRules,
		},
		sleep: sleepContext,
	}
}

// CategoryURL returns the listing page URL of a category
func (c *CategoryCrawler) CategoryURL(category string) string {
	return fmt.Sprintf(categoryPathFormat, c.config.BaseURL, url.PathEscape(category))
}

// Crawl visits every category in order and returns the deduplicated listings
// together with a report per visited category. A failed category never aborts
// the run; a cancelled context stops it before the next category.
func (c *CategoryCrawler) Crawl(ctx context.Context) ([]Listing, []CategoryReport) {
	state := NewRunState()
	reports := make([]CategoryReport, 0, len(c.config.Categories))

	for i, category := range c.config.Categories {
		if ctx.Err() != nil {
			break
		}

		report := c.crawlCategory(ctx, category, state)
		reports = append(reports, report)

		if i < len(c.config.Categories)-1 {
			if err := c.sleep(ctx, c.config.CategoryDelay); err != nil {
				break
			}
		}
	}

	return state.Collected(), reports
}

// crawlCategory runs Pending → Loaded → Extracted, or Pending → Retrying(n) → Failed.
func (c *CategoryCrawler) crawlCategory(ctx context.Context, category string, state *RunState) CategoryReport {
	log := logger.ForCrawler(category)
	report := CategoryReport{Category: category, Status: StatusFailed}

	attempts, err := c.navigate(ctx, category)
	report.Attempts = attempts
	if err != nil {
		log.Error().Err(err).Int("attempts", attempts).Msg("Category failed to load")
		report.Err = err
		return report
	}

	content, err := c.page.Content(ctx, c.config.Selectors.Listing, c.config.WaitTimeout)
	if err != nil {
		report.Err = dealerrors.NewExtraction(category, "no listings appeared on page", err)
		log.Warn().Err(err).Dur("timeout", c.config.WaitTimeout).Msg("Listing elements did not appear")
		return report
	}

	result, err := c.extractor.Extract(content, category, state)
	report.Result = result
	if err != nil {
		report.Err = err
		log.Error().Err(err).Msg("Failed to extract listings")
		return report
	}

	report.Status = StatusExtracted
	log.Info().
		Int("found", result.Found).
		Int("added", result.Added).
		Int("duplicates", result.Duplicates).
		Int("no_price", result.NoPrice).
		Int("skipped", result.Skipped).
		Int("collected_total", state.Len()).
		Msg("Category extracted")
	return report
}

// navigate loads the category page with a fixed delay between attempts
func (c *CategoryCrawler) navigate(ctx context.Context, category string) (int, error) {
	target := c.CategoryURL(category)
	log := logger.ForCrawler(category)

	var lastErr error
	for attempt := 1; attempt <= c.config.RetryAttempts; attempt++ {
		err := c.page.Navigate(ctx, target)
		if err == nil {
			return attempt, nil
		}

		// A page session may already classify the failure as permanent.
		var dealErr *dealerrors.DealError
		if errors.As(err, &dealErr) && !dealErr.IsRetryable() {
			return attempt, err
		}
		lastErr = dealerrors.NewNavigation(category, fmt.Sprintf("failed to load %s", target), err)

		if attempt < c.config.RetryAttempts {
			log.Warn().
				Err(err).
				Int("attempt", attempt).
				Int("max_attempts", c.config.RetryAttempts).
				Msg("Retrying category")
			if err := c.sleep(ctx, c.config.RetryDelay); err != nil {
				return attempt, lastErr
			}
		}
	}

	return c.config.RetryAttempts, fmt.Errorf("%s failed after %d attempts: %w", category, c.config.RetryAttempts, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

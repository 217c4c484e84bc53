package worker

import (
	"context"
	"time"

	"github.com/google/uuid"

	"sjsage522/geardealworker/internal/crawler"
	"sjsage522/geardealworker/logger"
	"sjsage522/geardealworker/services/evaluator"
	"sjsage522/geardealworker/services/notifier"
)

// Crawler collects the deduplicated listings of one run
type Crawler interface {
	Crawl(ctx context.Context) ([]crawler.Listing, []crawler.CategoryReport)
}

// Evaluator returns positive verdicts for a batch of listings
type Evaluator interface {
	Evaluate(ctx context.Context, listings []crawler.Listing) []evaluator.Verdict
}

// RunSummary is what one run did, logged when the run ends
type RunSummary struct {
	RunID            string
	Categories       int
	FailedCategories int
	Listings         int
	Verdicts         int
	Rejected         int
	AlertsSent       int
	AlertsFailed     int
	Duration         time.Duration
}

// Worker runs one crawl, evaluate and notify cycle
type Worker struct {
	crawler   Crawler
	evaluator Evaluator
	notifier  notifier.Notifier
	now       func() time.Time
}

// NewWorker creates a new worker
func NewWorker(c Crawler, e Evaluator, n notifier.Notifier) *Worker {
	return &Worker{
		crawler:   c,
		evaluator: e,
		notifier:  n,
		now:       time.Now,
	}
}

// RunOnce crawls every category, evaluates the collected batch and sends one
// alert per verdict that points at a collected listing. Delivery failures are
// logged and do not stop the remaining alerts.
func (w *Worker) RunOnce(ctx context.Context) RunSummary {
	start := w.now()
	summary := RunSummary{RunID: uuid.NewString()}
	log := logger.ForWorker().WithField("run_id", summary.RunID)

	log.Info().Msg("Run started")

	listings, reports := w.crawler.Crawl(ctx)
	summary.Categories = len(reports)
	for _, r := range reports {
		if r.Status == crawler.StatusFailed {
			summary.FailedCategories++
		}
	}
	summary.Listings = len(listings)

	verdicts := w.evaluator.Evaluate(ctx, listings)
	summary.Verdicts = len(verdicts)

	for _, v := range verdicts {
		if !v.ValidIndex(len(listings)) {
			summary.Rejected++
			log.Warn().
				Int("listing_index", v.ListingIndex).
				Int("listings", len(listings)).
				Msg("Verdict refers to an unknown listing, ignoring")
			continue
		}

		listing := listings[v.ListingIndex]
		alert := notifier.Alert{
			RunID:   summary.RunID,
			Listing: listing,
			Reason:  v.Reason,
			FoundAt: w.now(),
		}

		if err := w.notifier.Notify(ctx, alert); err != nil {
			summary.AlertsFailed++
			log.Error().Err(err).
				Str("source_id", listing.SourceID).
				Str("notifier", w.notifier.Name()).
				Msg("Failed to deliver alert")
			continue
		}
		summary.AlertsSent++
		log.Info().
			Str("source_id", listing.SourceID).
			Str("title", listing.Title).
			Int("price", listing.Price).
			Msg("Deal alert sent")
	}

	summary.Duration = w.now().Sub(start)
	log.Info().
		Int("categories", summary.Categories).
		Int("failed_categories", summary.FailedCategories).
		Int("listings", summary.Listings).
		Int("verdicts", summary.Verdicts).
		Int("rejected", summary.Rejected).
		Int("alerts_sent", summary.AlertsSent).
		Int("alerts_failed", summary.AlertsFailed).
		Dur("duration", summary.Duration).
		Msg("Run finished")

	return summary
}

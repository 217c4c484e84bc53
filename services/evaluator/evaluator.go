package evaluator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"sjsage522/geardealworker/internal/crawler"
	"sjsage522/geardealworker/logger"
	dealerrors "sjsage522/geardealworker/pkg/errors"
)

// ResultYes is the only verdict result the reasoning service reports
const ResultYes = "YES"

// ReasoningService answers one prompt with a JSON document
type ReasoningService interface {
	Name() string
	Complete(ctx context.Context, prompt string) ([]byte, error)
}

// Verdict is a positive deal determination for one listing of the batch
type Verdict struct {
	ListingIndex int
	Result       string
	Condition    crawler.Condition
	Reason       string
}

// rawVerdict mirrors one element of the reasoning service's JSON array
type rawVerdict struct {
	ID        *int   `json:"id"`
	Result    string `json:"result"`
	Condition string `json:"condition"`
	Reason    string `json:"reason"`
}

// Evaluator sends a whole batch of listings to the reasoning service in one request
type Evaluator struct {
	service ReasoningService
	log     *logger.Logger
}

// NewEvaluator creates a new evaluator
func NewEvaluator(service ReasoningService) *Evaluator {
	return &Evaluator{
		service: service,
		log:     logger.ForEvaluator().WithField("service", service.Name()),
	}
}

// Evaluate returns the positive verdicts for listings. Failures are logged and
// yield no verdicts; indices are not range-checked here.
func (e *Evaluator) Evaluate(ctx context.Context, listings []crawler.Listing) []Verdict {
	if len(listings) == 0 {
		e.log.Info().Msg("No listings collected, skipping evaluation")
		return nil
	}

	e.log.Info().Int("listings", len(listings)).Msg("Sending batch for evaluation")

	verdicts, err := e.evaluate(ctx, listings)
	if err != nil {
		e.log.Error().Err(err).Msg("Batch evaluation failed")
		return nil
	}

	e.log.Info().Int("verdicts", len(verdicts)).Msg("Batch evaluation completed")
	return verdicts
}

func (e *Evaluator) evaluate(ctx context.Context, listings []crawler.Listing) ([]Verdict, error) {
	response, err := e.service.Complete(ctx, BuildPrompt(listings))
	if err != nil {
		return nil, dealerrors.NewEvaluator(e.service.Name(), "request failed", err)
	}

	verdicts, err := e.parseVerdicts(response)
	if err != nil {
		return nil, dealerrors.NewEvaluator(e.service.Name(), "unparseable response", err)
	}
	return verdicts, nil
}

// parseVerdicts decodes the response array item by item so one malformed item
// does not discard the others
func (e *Evaluator) parseVerdicts(response []byte) ([]Verdict, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(stripCodeFence(response), &items); err != nil {
		return nil, err
	}

	verdicts := make([]Verdict, 0, len(items))
	for i, item := range items {
		var raw rawVerdict
		if err := json.Unmarshal(item, &raw); err != nil {
			e.log.Warn().Err(err).Int("item", i).Msg("Skipping malformed verdict")
			continue
		}
		if raw.ID == nil {
			e.log.Warn().Int("item", i).Msg("Skipping verdict without id")
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(raw.Result), ResultYes) {
			continue
		}

		condition, ok := crawler.ParseCondition(raw.Condition)
		if !ok {
			e.log.Warn().Int("item", i).Str("condition", raw.Condition).Msg("Skipping verdict with unknown condition")
			continue
		}

		verdicts = append(verdicts, Verdict{
			ListingIndex: *raw.ID,
			Result:       ResultYes,
			Condition:    condition,
			Reason:       strings.TrimSpace(raw.Reason),
		})
	}
	return verdicts, nil
}

// stripCodeFence removes a surrounding ```json ... ``` block if present
func stripCodeFence(b []byte) []byte {
	b = bytes.TrimSpace(b)
	if !bytes.HasPrefix(b, []byte("```")) {
		return b
	}
	b = b[3:]
	if nl := bytes.IndexByte(b, '\n'); nl >= 0 {
		b = b[nl+1:]
	}
	b = bytes.TrimSuffix(bytes.TrimSpace(b), []byte("```"))
	return bytes.TrimSpace(b)
}

// ValidIndex reports whether v refers to a listing of a batch of size n
func (v Verdict) ValidIndex(n int) bool {
	return v.ListingIndex >= 0 && v.ListingIndex < n
}

func (v Verdict) String() string {
	return fmt.Sprintf("#%d %s (%s)", v.ListingIndex, v.Result, v.Condition)
}

package evaluator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"sjsage522/geardealworker/internal/crawler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	response string
	err      error
	prompts  []string
}

func (s *fakeService) Name() string { return "fake" }

func (s *fakeService) Complete(_ context.Context, prompt string) ([]byte, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return nil, s.err
	}
	return []byte(s.response), nil
}

func testListings() []crawler.Listing {
	return []crawler.Listing{
		{SourceID: "1", Title: "Elektron Digitakt", Price: 380, Condition: crawler.ConditionUsed, Link: "https://www.example.rs/oglas/1"},
		{SourceID: "2", Title: "Korg Volca Keys", Price: 120, Condition: crawler.ConditionNew, Link: "https://www.example.rs/oglas/2"},
		{SourceID: "3", Title: "Roland TR-8S", Price: 390, Condition: crawler.ConditionUsed, Link: "https://www.example.rs/oglas/3"},
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(testListings())

	assert.Contains(t, prompt, "ID: 0 | Item: Elektron Digitakt | Condition: Used | Price: 380 EUR\n")
	assert.Contains(t, prompt, "ID: 1 | Item: Korg Volca Keys | Condition: New | Price: 120 EUR\n")
	assert.Contains(t, prompt, "ID: 2 | Item: Roland TR-8S | Condition: Used | Price: 390 EUR\n")
	assert.Contains(t, prompt, "below 75% of local retail")
	assert.Contains(t, prompt, "below 85% of the local average")
	assert.Contains(t, prompt, "times 1.25")
	assert.Contains(t, prompt, "times 1.15")
	assert.Contains(t, prompt, "Diamond Deal")
}

func TestEvaluate(t *testing.T) {
	service := &fakeService{response: `[
		{"id": 0, "result": "YES", "condition": "USED", "reason": "Local used average is 550e."},
		{"id": 1, "result": "NO", "condition": "NEW", "reason": "Fair price."},
		{"id": 2, "result": "yes", "condition": "Used", "reason": " Diamond Deal "}
	]`}

	verdicts := NewEvaluator(service).Evaluate(context.Background(), testListings())

	require.Len(t, service.prompts, 1)
	require.Len(t, verdicts, 2)
	assert.Equal(t, Verdict{ListingIndex: 0, Result: ResultYes, Condition: crawler.ConditionUsed, Reason: "Local used average is 550e."}, verdicts[0])
	assert.Equal(t, 2, verdicts[1].ListingIndex)
	assert.Equal(t, "Diamond Deal", verdicts[1].Reason)
}

func TestEvaluateEmptyBatchSkipsRequest(t *testing.T) {
	service := &fakeService{response: `[]`}

	verdicts := NewEvaluator(service).Evaluate(context.Background(), nil)

	assert.Empty(t, verdicts)
	assert.Empty(t, service.prompts)
}

func TestEvaluateServiceFailure(t *testing.T) {
	service := &fakeService{err: errors.New("quota exceeded")}

	verdicts := NewEvaluator(service).Evaluate(context.Background(), testListings())

	assert.Empty(t, verdicts)
	assert.Len(t, service.prompts, 1)
}

func TestEvaluateUnparseableResponse(t *testing.T) {
	for _, response := range []string{"", "not json", `{"id": 0, "result": "YES"}`} {
		service := &fakeService{response: response}
		assert.Empty(t, NewEvaluator(service).Evaluate(context.Background(), testListings()), response)
	}
}

func TestEvaluateCodeFence(t *testing.T) {
	service := &fakeService{response: "```json\n[{\"id\": 1, \"result\": \"YES\", \"condition\": \"NEW\", \"reason\": \"Retail is 200e.\"}]\n```"}

	verdicts := NewEvaluator(service).Evaluate(context.Background(), testListings())

	require.Len(t, verdicts, 1)
	assert.Equal(t, 1, verdicts[0].ListingIndex)
	assert.Equal(t, crawler.ConditionNew, verdicts[0].Condition)
}

func TestEvaluateSkipsMalformedItems(t *testing.T) {
	service := &fakeService{response: `[
		{"id": "zero", "result": "YES", "condition": "USED", "reason": "bad id"},
		{"result": "YES", "condition": "USED", "reason": "missing id"},
		{"id": 1, "result": "YES", "condition": "REFURBISHED", "reason": "unknown condition"},
		42,
		{"id": 2, "result": "YES", "condition": "USED", "reason": "Strong buy."}
	]`}

	verdicts := NewEvaluator(service).Evaluate(context.Background(), testListings())

	require.Len(t, verdicts, 1)
	assert.Equal(t, 2, verdicts[0].ListingIndex)
}

func TestEvaluateKeepsOutOfRangeIndices(t *testing.T) {
	service := &fakeService{response: `[{"id": 7, "result": "YES", "condition": "NEW", "reason": "?"}, {"id": -1, "result": "YES", "condition": "NEW", "reason": "?"}]`}

	verdicts := NewEvaluator(service).Evaluate(context.Background(), testListings())

	require.Len(t, verdicts, 2)
	assert.False(t, verdicts[0].ValidIndex(3))
	assert.False(t, verdicts[1].ValidIndex(3))
	assert.True(t, Verdict{ListingIndex: 2}.ValidIndex(3))
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, "[]", string(stripCodeFence([]byte("  []  "))))
	assert.Equal(t, "[]", string(stripCodeFence([]byte("```\n[]\n```"))))
	assert.Equal(t, "[1]", string(stripCodeFence([]byte("```json\n[1]```"))))
	assert.True(t, strings.HasPrefix(string(stripCodeFence([]byte("```json\n[{}]\n```\n"))), "[{"))
}

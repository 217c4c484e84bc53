package evaluator

import (
	"fmt"
	"strings"

	"sjsage522/geardealworker/internal/crawler"
)

const (
	newRetailMarkup   = 1.25
	usedAverageMarkup = 1.15
	newDealThreshold  = 0.75
	usedDealThreshold = 0.85
)

const promptHeader = `You value music gear for the Serbian second-hand market.
Review every listing below and report the ones that are clear deals.

Listings:
%s
Rules:
1. Condition: decide whether the item is NEW (sealed or store demo) or USED.
2. Reference prices:
   - EU base: recent sold prices on Reverb or eBay for the same condition.
   - Local retail for NEW items is the EU base times %.2f.
   - Local average for USED items is the EU used base times %.2f, since used gear costs more locally than in the EU.
3. Deal criteria:
   - NEW: answer YES only when the price is below %.0f%% of local retail.
   - USED: answer YES only when the price is below %.0f%% of the local average.
   - When the price is also below the EU used base, mention "Diamond Deal" in the reason.

Respond with a JSON array that contains ONLY the YES items, or [] when nothing qualifies.
Each element has the listing ID, the result, the condition and a short reason:
[
  {"id": 0, "result": "YES", "condition": "USED", "reason": "Local used average is around 1150e, listed at 850e. Below EU used prices too."},
  {"id": 5, "result": "YES", "condition": "NEW", "reason": "Local retail is 500e, listed at 320e."}
]
`

// ListingLine renders one listing of the batch with its index
func ListingLine(index int, listing crawler.Listing) string {
	return fmt.Sprintf("ID: %d | Item: %s | Condition: %s | Price: %d EUR",
		index, listing.Title, listing.Condition, listing.Price)
}

// BuildPrompt enumerates listings by position and wraps them in the valuation rules
func BuildPrompt(listings []crawler.Listing) string {
	var b strings.Builder
	for i, listing := range listings {
		b.WriteString(ListingLine(i, listing))
		b.WriteByte('\n')
	}

	return fmt.Sprintf(promptHeader, b.String(),
		newRetailMarkup, usedAverageMarkup,
		newDealThreshold*100, usedDealThreshold*100)
}

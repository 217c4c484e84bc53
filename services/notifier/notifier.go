package notifier

import (
	"context"
	"fmt"
	"time"

	"sjsage522/geardealworker/internal/crawler"
)

// Alert is one positive deal ready to be delivered
type Alert struct {
	RunID   string          `json:"run_id"`
	Listing crawler.Listing `json:"listing"`
	Reason  string          `json:"reason"`
	FoundAt time.Time       `json:"found_at"`
}

// Notifier delivers alerts to a human channel or a downstream sink
type Notifier interface {
	// Name identifies the sink in logs and errors
	Name() string

	// Notify delivers a single alert
	Notify(ctx context.Context, alert Alert) error
}

// FormatAlert renders the Markdown message sent to chat
func FormatAlert(listing crawler.Listing, reason string) string {
	return fmt.Sprintf("💎 *DEAL FOUND* 💎\n\nItem: %s\nPrice: %d€\nAI Reason: %s\n\n🔗 [Open Ad](%s)",
		listing.Title, listing.Price, reason, listing.Link)
}

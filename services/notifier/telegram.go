package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	dealerrors "sjsage522/geardealworker/pkg/errors"
)

const DefaultTelegramAPIURL = "https://api.telegram.org"

// TelegramNotifier posts alerts to one chat through the Bot API
type TelegramNotifier struct {
	apiURL string
	token  string
	chatID string
	client *http.Client
}

var _ Notifier = (*TelegramNotifier)(nil)

// telegramResponse is the envelope every Bot API method returns
type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// NewTelegramNotifier creates a notifier for chatID. An empty apiURL selects the public Bot API.
func NewTelegramNotifier(apiURL, token, chatID string) *TelegramNotifier {
	if apiURL == "" {
		apiURL = DefaultTelegramAPIURL
	}
	return &TelegramNotifier{
		apiURL: strings.TrimSuffix(apiURL, "/"),
		token:  token,
		chatID: chatID,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *TelegramNotifier) Name() string {
	return "telegram"
}

// Notify sends the formatted alert with Markdown parse mode. There is no retry.
func (n *TelegramNotifier) Notify(ctx context.Context, alert Alert) error {
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", FormatAlert(alert.Listing, alert.Reason))
	form.Set("parse_mode", "Markdown")

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiURL, n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return dealerrors.NewDelivery(n.Name(), "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		// The request URL carries the bot token
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return dealerrors.NewDelivery(n.Name(), "sendMessage request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return dealerrors.NewDelivery(n.Name(), "failed to read response", err)
	}

	var result telegramResponse
	_ = json.Unmarshal(body, &result)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return dealerrors.NewDelivery(n.Name(),
			fmt.Sprintf("sendMessage returned status %d: %s", resp.StatusCode, result.Description), nil)
	}
	if !result.OK {
		return dealerrors.NewDelivery(n.Name(),
			fmt.Sprintf("sendMessage not ok: %s", result.Description), nil)
	}
	return nil
}

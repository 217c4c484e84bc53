package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"sjsage522/geardealworker/internal/crawler"
	dealerrors "sjsage522/geardealworker/pkg/errors"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAlert() Alert {
	return Alert{
		RunID: "run-1",
		Listing: crawler.Listing{
			SourceID:  "42",
			Title:     "Elektron Digitakt",
			Price:     380,
			Condition: crawler.ConditionUsed,
			Link:      "https://www.example.rs/oglas/42",
			Category:  "moduli-i-sempleri",
		},
		Reason:  "Local used average is 550e.",
		FoundAt: time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC),
	}
}

func TestFormatAlert(t *testing.T) {
	alert := testAlert()
	want := "💎 *DEAL FOUND* 💎\n\n" +
		"Item: Elektron Digitakt\n" +
		"Price: 380€\n" +
		"AI Reason: Local used average is 550e.\n\n" +
		"🔗 [Open Ad](https://www.example.rs/oglas/42)"
	assert.Equal(t, want, FormatAlert(alert.Listing, alert.Reason))
}

func TestTelegramNotifier(t *testing.T) {
	var got url.Values
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		got, _ = url.ParseQuery(string(body))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	defer server.Close()

	n := NewTelegramNotifier(server.URL+"/", "123:abc", "-100200")
	require.NoError(t, n.Notify(context.Background(), testAlert()))

	assert.Equal(t, "/bot123:abc/sendMessage", path)
	assert.Equal(t, "-100200", got.Get("chat_id"))
	assert.Equal(t, "Markdown", got.Get("parse_mode"))
	assert.Equal(t, FormatAlert(testAlert().Listing, testAlert().Reason), got.Get("text"))
}

func TestTelegramNotifierErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"bad request", http.StatusBadRequest, `{"ok":false,"description":"Bad Request: chat not found"}`},
		{"unauthorized", http.StatusUnauthorized, `{"ok":false,"description":"Unauthorized"}`},
		{"not ok", http.StatusOK, `{"ok":false,"description":"something"}`},
		{"garbage", http.StatusOK, `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := NewTelegramNotifier(server.URL, "123:abc", "1").Notify(context.Background(), testAlert())
			require.Error(t, err)
			assert.True(t, dealerrors.IsType(err, dealerrors.ErrorTypeDelivery))
		})
	}
}

func TestTelegramNotifierDoesNotLeakToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	err := NewTelegramNotifier(server.URL, "123:secret", "1").Notify(context.Background(), testAlert())
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret")
}

type recordingNotifier struct {
	name   string
	err    error
	alerts []Alert
}

func (r *recordingNotifier) Name() string { return r.name }

func (r *recordingNotifier) Notify(_ context.Context, alert Alert) error {
	r.alerts = append(r.alerts, alert)
	return r.err
}

func TestMultiNotifier(t *testing.T) {
	failing := &recordingNotifier{name: "a", err: errors.New("boom")}
	ok := &recordingNotifier{name: "b"}
	m := NewMultiNotifier(failing, ok)

	err := m.Notify(context.Background(), testAlert())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Len(t, failing.alerts, 1)
	assert.Len(t, ok.alerts, 1, "later sinks still receive the alert")
	assert.Equal(t, "a,b", m.Name())

	assert.NoError(t, NewMultiNotifier(ok).Notify(context.Background(), testAlert()))
}

func TestRedisStreamNotifier(t *testing.T) {
	ctx := context.Background()
	n := NewRedisStreamNotifier("localhost:6379", 0, "test_gear_deals", 100)
	defer n.Close()

	// Test if Redis is available
	if err := n.Ping(ctx); err != nil {
		t.Skip("Redis is not available, skipping test")
	}

	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 0})
	defer client.Close()
	client.Del(ctx, "test_gear_deals")
	defer client.Del(ctx, "test_gear_deals")

	require.NoError(t, n.Notify(ctx, testAlert()))

	entries, err := client.XRange(ctx, "test_gear_deals", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	var alert Alert
	require.NoError(t, json.Unmarshal([]byte(entries[0].Values[alertField].(string)), &alert))
	assert.Equal(t, testAlert(), alert)
	assert.Equal(t, "redis:test_gear_deals", n.Name())
}

package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"sjsage522/geardealworker/helpers"
	dealerrors "sjsage522/geardealworker/pkg/errors"

	"github.com/PuerkitoBio/goquery"
)

// FetchFunc downloads a page and returns its UTF-8 body
type FetchFunc func(ctx context.Context, url string) (io.Reader, error)

// HTTPPage is a page session over plain HTTP for server-rendered listing pages.
// It holds the body of the last navigated URL.
type HTTPPage struct {
	fetch FetchFunc
	url   string
	body  []byte
}

// NewHTTPPage creates an HTTP page session using browser-like request headers
func NewHTTPPage() *HTTPPage {
	return &HTTPPage{fetch: helpers.FetchWithRandomHeaders}
}

// Navigate downloads url and keeps its body for Content
func (p *HTTPPage) Navigate(ctx context.Context, url string) error {
	p.url, p.body = url, nil

	reader, err := p.fetch(ctx, url)
	if err != nil {
		var statusErr *helpers.StatusError
		if errors.As(err, &statusErr) && statusErr.NotFound() {
			return dealerrors.NewNotFound(url, "page does not exist", err)
		}
		return err
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read page body: %w", err)
	}
	p.body = body
	return nil
}

// Content returns the downloaded document once waitSelector matches in it.
// The page is static, so there is nothing to wait for beyond that check.
func (p *HTTPPage) Content(_ context.Context, waitSelector string, _ time.Duration) (io.Reader, error) {
	if p.body == nil {
		return nil, fmt.Errorf("no page loaded")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(p.body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", p.url, err)
	}
	if doc.Find(waitSelector).Length() == 0 {
		return nil, fmt.Errorf("selector %q matched no elements on %s", waitSelector, p.url)
	}
	return bytes.NewReader(p.body), nil
}

// Close releases the stored page
func (p *HTTPPage) Close() error {
	p.url, p.body = "", nil
	return nil
}

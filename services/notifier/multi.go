package notifier

import (
	"context"
	"errors"
	"strings"
)

// MultiNotifier delivers each alert to every sink
type MultiNotifier struct {
	sinks []Notifier
}

var _ Notifier = (*MultiNotifier)(nil)

func NewMultiNotifier(sinks ...Notifier) *MultiNotifier {
	return &MultiNotifier{sinks: sinks}
}

func (m *MultiNotifier) Name() string {
	names := make([]string, 0, len(m.sinks))
	for _, s := range m.sinks {
		names = append(names, s.Name())
	}
	return strings.Join(names, ",")
}

// Notify attempts every sink even when an earlier one fails and joins the errors
func (m *MultiNotifier) Notify(ctx context.Context, alert Alert) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Notify(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

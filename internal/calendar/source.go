// Package calendar adapts external calendars to the flat event list the
// sync pipeline consumes.
package calendar

import (
	"context"
	"time"

	"interviewpro/internal/model"
)

// UntitledSummary replaces an empty event title.
const UntitledSummary = "(제목 없음)"

// Source returns the events overlapping [start, end].
type Source interface {
	FetchEvents(ctx context.Context, start, end time.Time) ([]model.ExternalEvent, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, start, end time.Time) ([]model.ExternalEvent, error)

func (f SourceFunc) FetchEvents(ctx context.Context, start, end time.Time) ([]model.ExternalEvent, error) {
	return f(ctx, start, end)
}

func summaryOrDefault(s string) string {
	if s == "" {
		return UntitledSummary
	}
	return s
}

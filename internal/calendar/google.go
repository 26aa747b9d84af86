package calendar

import (
	"context"
	"fmt"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"interviewpro/internal/auth"
	appLog "interviewpro/internal/log"
	"interviewpro/internal/model"
)

// GoogleSource reads a Google Calendar with the auth session's token.
type GoogleSource struct {
	auth       *auth.Manager
	calendarID string

	// extra client options, used by tests to point at a fake endpoint
	opts []option.ClientOption
}

// NewGoogleSource returns a source for calendarID ("primary" when empty).
func NewGoogleSource(m *auth.Manager, calendarID string, opts ...option.ClientOption) *GoogleSource {
	if calendarID == "" {
		calendarID = "primary"
	}
	return &GoogleSource{auth: m, calendarID: calendarID, opts: opts}
}

// FetchEvents lists single (expanded) events ordered by start time, all
// pages.
func (g *GoogleSource) FetchEvents(ctx context.Context, start, end time.Time) ([]model.ExternalEvent, error) {
	ts, err := g.auth.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	opts := append([]option.ClientOption{option.WithTokenSource(ts)}, g.opts...)
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("calendar: new service: %w", err)
	}

	var out []model.ExternalEvent
	call := svc.Events.List(g.calendarID).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)

	err = call.Pages(ctx, func(page *gcal.Events) error {
		for _, item := range page.Items {
			if item.Status == "cancelled" {
				continue
			}
			out = append(out, fromGoogle(item))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("calendar: list events: %w", err)
	}
	appLog.Debug("calendar: google events fetched", "calendar", g.calendarID, "count", len(out))
	return out, nil
}

func fromGoogle(item *gcal.Event) model.ExternalEvent {
	return model.ExternalEvent{
		ID:          item.Id,
		Summary:     summaryOrDefault(item.Summary),
		Start:       eventTime(item.Start),
		End:         eventTime(item.End),
		Description: item.Description,
	}
}

// eventTime prefers dateTime and falls back to the all-day date.
func eventTime(t *gcal.EventDateTime) string {
	if t == nil {
		return ""
	}
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}

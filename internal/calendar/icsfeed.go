package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"interviewpro/internal/ics"
	appLog "interviewpro/internal/log"
	"interviewpro/internal/model"
)

// ICSSource reads one or more iCalendar subscriptions. A feed that fails
// is logged and skipped; the call only fails when every feed failed.
type ICSSource struct {
	fetcher *ics.Fetcher
	feeds   []ics.Feed
	loc     *time.Location
}

func NewICSSource(fetcher *ics.Fetcher, feeds []ics.Feed, loc *time.Location) *ICSSource {
	if loc == nil {
		loc = time.Local
	}
	return &ICSSource{fetcher: fetcher, feeds: feeds, loc: loc}
}

func (s *ICSSource) FetchEvents(ctx context.Context, start, end time.Time) ([]model.ExternalEvent, error) {
	var (
		events []ics.VEvent
		errs   []error
	)
	for _, feed := range s.feeds {
		p, err := s.fetcher.Fetch(ctx, feed)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", feed.Name, err))
			continue
		}
		parsed, err := ics.Parse(feed, p.Body, s.loc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		events = append(events, parsed...)
	}
	if len(s.feeds) > 0 && len(errs) == len(s.feeds) {
		return nil, errors.Join(errs...)
	}
	for _, err := range errs {
		appLog.Error("calendar: ics feed skipped", err)
	}

	occ, err := ics.Expand(events, ics.Window{Start: start, End: end, Location: s.loc})
	if err != nil {
		return nil, err
	}
	out := make([]model.ExternalEvent, 0, len(occ))
	for _, o := range occ {
		out = append(out, fromOccurrence(o))
	}
	return out, nil
}

func fromOccurrence(o ics.Occurrence) model.ExternalEvent {
	ev := model.ExternalEvent{
		ID:          o.ID(),
		Summary:     summaryOrDefault(o.Summary),
		Description: o.Description,
	}
	if o.AllDay {
		ev.Start = o.Start.Format("2006-01-02")
		ev.End = o.End.Format("2006-01-02")
	} else {
		ev.Start = o.Start.Format(time.RFC3339)
		ev.End = o.End.Format(time.RFC3339)
	}
	return ev
}

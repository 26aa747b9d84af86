package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "interviewpro/internal/log"
)

// VEvent is a parsed VEVENT before recurrence expansion.
type VEvent struct {
	Feed Feed

	UID         string
	Summary     string
	Description string
	Location    string

	Start  time.Time
	End    time.Time
	AllDay bool

	RRule   string
	ExDates []time.Time

	// RecurrenceID is set on a VEVENT that overrides one instance of a
	// recurring series.
	RecurrenceID *time.Time
}

// Parse decodes a feed body. Floating times and dates are read in loc.
// VEVENTs that cannot be parsed are logged and skipped.
func Parse(feed Feed, body []byte, loc *time.Location) ([]VEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("ics: empty body")
	}
	if loc == nil {
		loc = time.Local
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ics: parse %s: %w", feed.Name, err)
	}

	var out []VEvent
	for _, ve := range cal.Events() {
		ev, err := parseVEvent(feed, ve, loc)
		if err != nil {
			appLog.Warn("ics: skipping vevent", "feed", feed.Name, "reason", err.Error())
			continue
		}
		out = append(out, ev)
	}
	appLog.Debug("ics: parsed", "feed", feed.Name, "events", len(out))
	return out, nil
}

func propValue(ve *ical.VEvent, p ical.ComponentProperty) string {
	if prop := ve.GetProperty(p); prop != nil {
		return prop.Value
	}
	return ""
}

func parseVEvent(feed Feed, ve *ical.VEvent, loc *time.Location) (VEvent, error) {
	ev := VEvent{
		Feed:        feed,
		UID:         propValue(ve, ical.ComponentPropertyUniqueId),
		Summary:     propValue(ve, ical.ComponentPropertySummary),
		Description: propValue(ve, ical.ComponentPropertyDescription),
		Location:    propValue(ve, ical.ComponentPropertyLocation),
		RRule:       propValue(ve, ical.ComponentPropertyRrule),
	}
	if ev.UID == "" {
		return ev, errors.New("missing UID")
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return ev, errors.New("missing DTSTART")
	}
	ev.AllDay = isDateValue(dtStart)

	if ev.AllDay {
		start, err := parseICSTime(dtStart.Value, loc)
		if err != nil {
			return ev, fmt.Errorf("DTSTART: %w", err)
		}
		ev.Start = start
		ev.End = start.AddDate(0, 0, 1)
		if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil {
			if end, err := parseICSTime(dtEnd.Value, loc); err == nil && end.After(start) {
				ev.End = end
			}
		}
	} else {
		// the library resolves TZID; floating values come back in UTC and are re-read in loc
		start, err := ve.GetStartAt()
		if err != nil {
			return ev, fmt.Errorf("DTSTART: %w", err)
		}
		ev.Start = floating(dtStart, start, loc)
		ev.End = ev.Start
		if end, err := ve.GetEndAt(); err == nil {
			ev.End = floating(ve.GetProperty(ical.ComponentPropertyDtEnd), end, loc)
		}
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			if t, err := parseICSTime(part, loc); err == nil {
				ev.ExDates = append(ev.ExDates, t)
			}
		}
	}

	if rid := ve.GetProperty(ical.ComponentProperty("RECURRENCE-ID")); rid != nil {
		if t, err := parseICSTime(rid.Value, loc); err == nil {
			ev.RecurrenceID = &t
		}
	}
	return ev, nil
}

func isDateValue(p *ical.IANAProperty) bool {
	if vs := p.ICalParameters["VALUE"]; len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// floating re-reads a value without Z and TZID in loc.
func floating(p *ical.IANAProperty, parsed time.Time, loc *time.Location) time.Time {
	if p == nil || strings.HasSuffix(p.Value, "Z") || len(p.ICalParameters["TZID"]) > 0 {
		return parsed
	}
	if t, err := parseICSTime(p.Value, loc); err == nil {
		return t
	}
	return parsed
}

// parseICSTime handles the three basic forms: UTC date-time, floating
// date-time and date.
func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		return time.Time{}, errors.New("empty time value")
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, loc)
	default:
		return time.ParseInLocation("20060102", v, loc)
	}
}

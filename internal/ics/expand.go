package ics

import (
	"errors"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	appLog "interviewpro/internal/log"
)

const defaultMaxPerSeries = 500

// Occurrence is one concrete instance of a VEVENT inside a window.
type Occurrence struct {
	Feed        string
	UID         string
	Summary     string
	Description string
	Location    string
	AllDay      bool
	Recurring   bool
	Start       time.Time
	End         time.Time

	// SeriesStart is the instance start generated by the RRULE. It differs
	// from Start when a RECURRENCE-ID override moved the instance.
	SeriesStart time.Time
}

// ID is the occurrence identity used as the calendar event id: the UID for
// single events and "<uid>_<yyyymmddThhmmssZ>" for instances of a series.
// Moving an instance does not change its id.
func (o Occurrence) ID() string {
	if !o.Recurring {
		return o.UID
	}
	return o.UID + "_" + o.SeriesStart.UTC().Format("20060102T150405Z")
}

// Window bounds an expansion.
type Window struct {
	Start time.Time
	End   time.Time

	// Location for the returned times. Nil means time.Local.
	Location *time.Location

	// MaxPerSeries caps instances of one recurring series.
	MaxPerSeries int
}

// Expand turns parsed VEVENTs into occurrences overlapping the window,
// applying RRULE, EXDATE and RECURRENCE-ID overrides. The result is sorted
// by start time.
func Expand(events []VEvent, w Window) ([]Occurrence, error) {
	if w.End.Before(w.Start) {
		return nil, errors.New("ics: window end is before start")
	}
	if w.Location == nil {
		w.Location = time.Local
	}
	if w.MaxPerSeries <= 0 {
		w.MaxPerSeries = defaultMaxPerSeries
	}

	overrides := make(map[string][]VEvent)
	var bases []VEvent
	for _, ev := range events {
		if ev.RecurrenceID != nil {
			overrides[ev.UID] = append(overrides[ev.UID], ev)
			continue
		}
		bases = append(bases, ev)
	}

	var out []Occurrence
	for _, ev := range bases {
		if ev.RRule == "" {
			if overlaps(ev.Start, ev.End, w) {
				out = append(out, occurrence(ev, ev.Start, ev.End, false, w.Location))
			}
			continue
		}
		out = append(out, expandSeries(ev, overrides[ev.UID], w)...)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func expandSeries(ev VEvent, overrides []VEvent, w Window) []Occurrence {
	opt, err := rrule.StrToROption(ev.RRule)
	if err != nil {
		appLog.Error("ics: bad RRULE", err, "uid", ev.UID, "rrule", ev.RRule)
		return nil
	}
	opt.Dtstart = ev.Start
	r, err := rrule.NewRRule(*opt)
	if err != nil {
		appLog.Error("ics: bad RRULE", err, "uid", ev.UID, "rrule", ev.RRule)
		return nil
	}

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	dur := ev.End.Sub(ev.Start)
	// widen by the duration so instances that started before the window
	// but still run inside it are kept
	starts := set.Between(w.Start.Add(-dur).In(ev.Start.Location()), w.End.In(ev.Start.Location()), true)
	if len(starts) > w.MaxPerSeries {
		appLog.Warn("ics: series truncated", "uid", ev.UID, "cap", w.MaxPerSeries)
		starts = starts[:w.MaxPerSeries]
	}

	out := make([]Occurrence, 0, len(starts))
	for _, s := range starts {
		inst, start, end := ev, s, s.Add(dur)
		for _, o := range overrides {
			if o.RecurrenceID.Equal(s) {
				inst, start, end = o, o.Start, o.End
				break
			}
		}
		if !overlaps(start, end, w) {
			continue
		}
		occ := occurrence(inst, start, end, true, w.Location)
		occ.SeriesStart = s
		out = append(out, occ)
	}
	return out
}

func occurrence(ev VEvent, start, end time.Time, recurring bool, loc *time.Location) Occurrence {
	return Occurrence{
		Feed:        ev.Feed.Name,
		UID:         ev.UID,
		Summary:     ev.Summary,
		Description: ev.Description,
		Location:    ev.Location,
		AllDay:      ev.AllDay,
		Recurring:   recurring,
		Start:       start.In(loc),
		End:         end.In(loc),
	}
}

func overlaps(start, end time.Time, w Window) bool {
	if end.Before(start) {
		end = start
	}
	return !end.Before(w.Start) && !start.After(w.End)
}

// Package board groups the roster into calendar weeks for display.
package board

import (
	"fmt"
	"sort"
	"time"

	"interviewpro/internal/model"
)

// WeekKey identifies a calendar week by its Monday. It is comparable and
// used directly as a map key.
type WeekKey struct {
	Year  int
	Month time.Month
	Day   int
}

// Monday returns the Monday anchor as midnight in loc.
func (k WeekKey) Monday(loc *time.Location) time.Time {
	return time.Date(k.Year, k.Month, k.Day, 0, 0, 0, 0, loc)
}

// AddWeeks returns the key n weeks away.
func (k WeekKey) AddWeeks(n int) WeekKey {
	return keyOf(time.Date(k.Year, k.Month, k.Day+7*n, 0, 0, 0, 0, time.UTC))
}

func (k WeekKey) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", k.Year, int(k.Month), k.Day)
}

func keyOf(t time.Time) WeekKey {
	y, m, d := t.Date()
	return WeekKey{Year: y, Month: m, Day: d}
}

// MondayOf returns midnight of the Monday starting t's week in loc.
func MondayOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	back := (int(t.Weekday()) + 6) % 7 // Sunday belongs to the preceding Monday
	return time.Date(t.Year(), t.Month(), t.Day()-back, 0, 0, 0, 0, loc)
}

// KeyOf returns the week key of t in loc.
func KeyOf(t time.Time, loc *time.Location) WeekKey {
	return keyOf(MondayOf(t, loc))
}

// Labels are the relative week names shown on the board.
type Labels struct {
	ThisWeek string
	LastWeek string
	NextWeek string
}

var (
	EnglishLabels = Labels{ThisWeek: "this week", LastWeek: "last week", NextWeek: "next week"}
	KoreanLabels  = Labels{ThisWeek: "이번 주", LastWeek: "지난 주", NextWeek: "다음 주"}
)

// LabelsFor picks the label set for a locale. Anything but "ko" is English.
func LabelsFor(locale string) Labels {
	if locale == "ko" || locale == "ko-KR" || locale == "ko_KR" {
		return KoreanLabels
	}
	return EnglishLabels
}

// Bucket is one week of scheduled candidates.
type Bucket struct {
	Key        WeekKey           `json:"-"`
	Week       string            `json:"week"`
	Label      string            `json:"label"`
	Start      time.Time         `json:"start"`
	End        time.Time         `json:"end"`
	Candidates []model.Candidate `json:"candidates"`
	IsThisWeek bool              `json:"isThisWeek"`
	IsLastWeek bool              `json:"isLastWeek"`
	IsNextWeek bool              `json:"isNextWeek"`
}

func (b Bucket) latest() int64 {
	if len(b.Candidates) == 0 || b.Candidates[0].ScheduledTime == nil {
		return 0
	}
	return *b.Candidates[0].ScheduledTime
}

// RangeLabel formats a week as "M/D ~ M/D", Monday to Sunday.
func RangeLabel(monday time.Time) string {
	sunday := monday.AddDate(0, 0, 6)
	return fmt.Sprintf("%d/%d ~ %d/%d", int(monday.Month()), monday.Day(), int(sunday.Month()), sunday.Day())
}

// Buckets groups candidates with a scheduled time into weeks relative to
// now. Candidates inside a bucket are newest first. The bucket for this
// week comes first and next week precedes last week; all remaining buckets
// follow by their newest candidate, descending.
func Buckets(candidates []model.Candidate, now time.Time, loc *time.Location, labels Labels) []Bucket {
	if loc == nil {
		loc = time.Local
	}
	thisWeek := KeyOf(now, loc)
	lastWeek := thisWeek.AddWeeks(-1)
	nextWeek := thisWeek.AddWeeks(1)

	byKey := make(map[WeekKey]*Bucket)
	var order []WeekKey
	for _, c := range candidates {
		at, ok := c.Scheduled()
		if !ok {
			continue
		}
		k := KeyOf(at, loc)
		b, seen := byKey[k]
		if !seen {
			monday := k.Monday(loc)
			b = &Bucket{
				Key:        k,
				Week:       k.String(),
				Start:      monday,
				End:        monday.AddDate(0, 0, 7).Add(-time.Millisecond),
				IsThisWeek: k == thisWeek,
				IsLastWeek: k == lastWeek,
				IsNextWeek: k == nextWeek,
			}
			switch {
			case b.IsThisWeek:
				b.Label = labels.ThisWeek
			case b.IsLastWeek:
				b.Label = labels.LastWeek
			case b.IsNextWeek:
				b.Label = labels.NextWeek
			default:
				b.Label = RangeLabel(monday)
			}
			byKey[k] = b
			order = append(order, k)
		}
		b.Candidates = append(b.Candidates, c.Clone())
	}

	out := make([]Bucket, 0, len(order))
	for _, k := range order {
		b := byKey[k]
		sort.SliceStable(b.Candidates, func(i, j int) bool {
			return *b.Candidates[i].ScheduledTime > *b.Candidates[j].ScheduledTime
		})
		out = append(out, *b)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsThisWeek != b.IsThisWeek {
			return a.IsThisWeek
		}
		if a.IsNextWeek && b.IsLastWeek {
			return true
		}
		if a.IsLastWeek && b.IsNextWeek {
			return false
		}
		return a.latest() > b.latest()
	})
	return out
}

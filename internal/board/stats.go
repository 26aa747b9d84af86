package board

import (
	"sort"
	"time"

	"interviewpro/internal/model"
)

// RecentLimit is how many finished notes WeeklyStats lists.
const RecentLimit = 5

var koreanDayNames = [7]string{"일", "월", "화", "수", "목", "금", "토"}

// DayStat is the number of notes recorded on one day of the current week.
type DayStat struct {
	Date    time.Time `json:"date"`
	DayName string    `json:"dayName"`
	Count   int       `json:"count"`
	IsToday bool      `json:"isToday"`
}

// RecentNote is a finished note with its candidate's name.
type RecentNote struct {
	CandidateID   string      `json:"candidateId"`
	CandidateName string      `json:"candidateName"`
	Stage         model.Stage `json:"stage"`
	Interviewer   string      `json:"interviewer"`
	Timestamp     int64       `json:"timestamp"`
	IsThisWeek    bool        `json:"isThisWeek"`
}

// Stats summarizes interview activity for the week containing now.
type Stats struct {
	WeekStart          time.Time    `json:"weekStart"`
	WeekEnd            time.Time    `json:"weekEnd"`
	ThisWeekTotal      int          `json:"thisWeekTotal"`
	LastWeekTotal      int          `json:"lastWeekTotal"`
	ThisWeekCandidates int          `json:"thisWeekCandidates"`
	GrowthRate         float64      `json:"growthRate"`
	Daily              []DayStat    `json:"daily"`
	MaxCount           int          `json:"maxCount"`
	Recent             []RecentNote `json:"recent"`
}

// WeeklyStats counts notes by week and day. Weeks start on Monday in loc.
// Growth is a percentage against last week; an empty last week yields 100
// when this week has notes and 0 otherwise.
func WeeklyStats(candidates []model.Candidate, now time.Time, loc *time.Location) Stats {
	if loc == nil {
		loc = time.Local
	}
	thisStart := MondayOf(now, loc)
	nextStart := thisStart.AddDate(0, 0, 7)
	lastStart := thisStart.AddDate(0, 0, -7)

	st := Stats{
		WeekStart: thisStart,
		WeekEnd:   nextStart.Add(-time.Millisecond),
		Daily:     make([]DayStat, 7),
	}
	today := now.In(loc)
	for i := range st.Daily {
		d := thisStart.AddDate(0, 0, i)
		st.Daily[i] = DayStat{
			Date:    d,
			DayName: koreanDayNames[d.Weekday()],
			IsToday: sameDay(d, today),
		}
	}

	within := func(t, from, to time.Time) bool { return !t.Before(from) && t.Before(to) }

	var recent []RecentNote
	for _, c := range candidates {
		hadThisWeek := false
		for _, n := range c.Notes {
			at := n.Time().In(loc)
			switch {
			case within(at, thisStart, nextStart):
				st.ThisWeekTotal++
				hadThisWeek = true
				st.Daily[(int(at.Weekday())+6)%7].Count++
			case within(at, lastStart, thisStart):
				st.LastWeekTotal++
			}
			recent = append(recent, RecentNote{
				CandidateID:   c.ID,
				CandidateName: c.Name,
				Stage:         n.Stage,
				Interviewer:   n.Interviewer.Name,
				Timestamp:     n.Timestamp,
				IsThisWeek:    !at.Before(thisStart),
			})
		}
		if hadThisWeek {
			st.ThisWeekCandidates++
		}
	}

	st.MaxCount = 1
	for _, d := range st.Daily {
		if d.Count > st.MaxCount {
			st.MaxCount = d.Count
		}
	}

	switch {
	case st.LastWeekTotal > 0:
		st.GrowthRate = float64(st.ThisWeekTotal-st.LastWeekTotal) / float64(st.LastWeekTotal) * 100
	case st.ThisWeekTotal > 0:
		st.GrowthRate = 100
	}

	sort.SliceStable(recent, func(i, j int) bool { return recent[i].Timestamp > recent[j].Timestamp })
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	st.Recent = recent
	if st.Recent == nil {
		st.Recent = []RecentNote{}
	}
	return st
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

package board

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interviewpro/internal/model"
)

var seoul = time.FixedZone("KST", 9*3600)

func at(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, seoul)
}

func scheduled(id string, t time.Time) model.Candidate {
	return model.Candidate{ID: id, Name: id, ScheduledTime: model.Millis(t)}
}

func TestMondayOf(t *testing.T) {
	tests := []struct {
		in   time.Time
		want time.Time
	}{
		{at(2024, 6, 12, 15), at(2024, 6, 10, 0)},
		{at(2024, 6, 10, 0), at(2024, 6, 10, 0)},
		{at(2024, 6, 16, 23), at(2024, 6, 10, 0)}, // Sunday
		{at(2024, 3, 3, 9), at(2024, 2, 26, 0)},   // across a month boundary
		{at(2025, 1, 1, 9), at(2024, 12, 30, 0)},  // across a year boundary
	}
	for _, tt := range tests {
		assert.True(t, tt.want.Equal(MondayOf(tt.in, seoul)), "MondayOf(%s)", tt.in)
	}
}

func TestWeekKeyIsStablePerWeek(t *testing.T) {
	k := KeyOf(at(2024, 6, 12, 9), seoul)
	assert.Equal(t, WeekKey{2024, time.June, 10}, k)
	assert.Equal(t, k, KeyOf(at(2024, 6, 16, 23), seoul))
	assert.NotEqual(t, k, KeyOf(at(2024, 6, 17, 0), seoul))
	assert.Equal(t, WeekKey{2024, time.June, 3}, k.AddWeeks(-1))
	assert.Equal(t, WeekKey{2024, time.July, 1}, k.AddWeeks(3))
}

func TestBucketLabels(t *testing.T) {
	now := at(2024, 6, 12, 10)
	cands := []model.Candidate{
		scheduled("this", at(2024, 6, 10, 14)),
		scheduled("last", at(2024, 6, 3, 14)),
		scheduled("next", at(2024, 6, 17, 14)),
		scheduled("older", at(2024, 5, 20, 14)),
		{ID: "manual", Name: "manual"},
	}

	buckets := Buckets(cands, now, seoul, EnglishLabels)
	require.Len(t, buckets, 4)

	byCandidate := map[string]Bucket{}
	for _, b := range buckets {
		for _, c := range b.Candidates {
			byCandidate[c.ID] = b
		}
	}
	assert.NotContains(t, byCandidate, "manual")

	assert.Equal(t, "this week", byCandidate["this"].Label)
	assert.True(t, byCandidate["this"].IsThisWeek)
	assert.Equal(t, "last week", byCandidate["last"].Label)
	assert.True(t, byCandidate["last"].IsLastWeek)
	assert.Equal(t, "next week", byCandidate["next"].Label)
	assert.True(t, byCandidate["next"].IsNextWeek)

	older := byCandidate["older"]
	assert.Equal(t, "5/20 ~ 5/26", older.Label)
	assert.False(t, older.IsThisWeek || older.IsLastWeek || older.IsNextWeek)
}

func TestBucketOrdering(t *testing.T) {
	now := at(2024, 6, 12, 10)
	cands := []model.Candidate{
		scheduled("3-weeks-ago", at(2024, 5, 22, 10)),
		scheduled("last", at(2024, 6, 7, 10)),
		scheduled("this", at(2024, 6, 11, 10)),
		scheduled("next", at(2024, 6, 18, 10)),
	}

	var labels []string
	for _, b := range Buckets(cands, now, seoul, KoreanLabels) {
		labels = append(labels, b.Label)
	}
	assert.Equal(t, []string{"이번 주", "다음 주", "지난 주", "5/20 ~ 5/26"}, labels)
}

func TestBucketOrderingFarFuture(t *testing.T) {
	now := at(2024, 6, 12, 10)
	cands := []model.Candidate{
		scheduled("old", at(2024, 4, 1, 10)),
		scheduled("far", at(2024, 7, 10, 10)),
		scheduled("this", at(2024, 6, 12, 8)),
	}

	buckets := Buckets(cands, now, seoul, EnglishLabels)
	require.Len(t, buckets, 3)
	assert.True(t, buckets[0].IsThisWeek)
	assert.Equal(t, "far", buckets[1].Candidates[0].ID)
	assert.Equal(t, "old", buckets[2].Candidates[0].ID)
}

func TestBucketCandidatesNewestFirst(t *testing.T) {
	now := at(2024, 6, 12, 10)
	cands := []model.Candidate{
		scheduled("mon", at(2024, 6, 10, 9)),
		scheduled("fri", at(2024, 6, 14, 9)),
		scheduled("wed", at(2024, 6, 12, 9)),
	}

	buckets := Buckets(cands, now, seoul, EnglishLabels)
	require.Len(t, buckets, 1)
	var got []string
	for _, c := range buckets[0].Candidates {
		got = append(got, c.ID)
	}
	assert.Equal(t, []string{"fri", "wed", "mon"}, got)
}

func TestBucketsEmpty(t *testing.T) {
	assert.Empty(t, Buckets(nil, time.Now(), seoul, EnglishLabels))
}

func TestLabelsFor(t *testing.T) {
	assert.Equal(t, KoreanLabels, LabelsFor("ko"))
	assert.Equal(t, EnglishLabels, LabelsFor("en"))
	assert.Equal(t, EnglishLabels, LabelsFor(""))
}

func note(id string, t time.Time) model.InterviewNote {
	return model.InterviewNote{
		ID:          id,
		Interviewer: model.Interviewer{Name: "김면접"},
		Timestamp:   t.UnixMilli(),
		Stage:       model.StageFirstTechnical,
	}
}

func TestWeeklyStats(t *testing.T) {
	now := at(2024, 6, 12, 10)
	cands := []model.Candidate{
		{ID: "a", Name: "A", Notes: []model.InterviewNote{
			note("a1", at(2024, 6, 10, 11)),
			note("a2", at(2024, 6, 12, 9)),
		}},
		{ID: "b", Name: "B", Notes: []model.InterviewNote{
			note("b1", at(2024, 6, 12, 8)),
			note("b2", at(2024, 6, 5, 15)),
		}},
		{ID: "c", Name: "C", Notes: []model.InterviewNote{
			note("c1", at(2024, 6, 4, 15)),
			note("c2", at(2024, 5, 1, 15)),
		}},
	}

	st := WeeklyStats(cands, now, seoul)
	assert.Equal(t, 3, st.ThisWeekTotal)
	assert.Equal(t, 2, st.LastWeekTotal)
	assert.Equal(t, 2, st.ThisWeekCandidates)
	assert.InDelta(t, 50.0, st.GrowthRate, 0.001)

	require.Len(t, st.Daily, 7)
	assert.Equal(t, "월", st.Daily[0].DayName)
	assert.Equal(t, 1, st.Daily[0].Count)
	assert.Equal(t, 2, st.Daily[2].Count)
	assert.True(t, st.Daily[2].IsToday)
	assert.Equal(t, "일", st.Daily[6].DayName)
	assert.Equal(t, 2, st.MaxCount)

	require.Len(t, st.Recent, RecentLimit)
	assert.Equal(t, "A", st.Recent[0].CandidateName)
	assert.True(t, st.Recent[0].IsThisWeek)
	assert.False(t, st.Recent[4].IsThisWeek)
}

func TestWeeklyStatsGrowthFromEmptyWeek(t *testing.T) {
	now := at(2024, 6, 12, 10)

	st := WeeklyStats(nil, now, seoul)
	assert.Zero(t, st.GrowthRate)
	assert.Equal(t, 1, st.MaxCount)
	assert.NotNil(t, st.Recent)

	st = WeeklyStats([]model.Candidate{{ID: "a", Notes: []model.InterviewNote{note("n", now)}}}, now, seoul)
	assert.Equal(t, 100.0, st.GrowthRate)
}

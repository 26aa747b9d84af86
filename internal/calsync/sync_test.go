package calsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"interviewpro/internal/auth"
	"interviewpro/internal/calendar"
	"interviewpro/internal/model"
	"interviewpro/internal/roster"
	"interviewpro/internal/store"
)

var now = time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC)

var fetched = []model.ExternalEvent{
	{ID: "ev1", Summary: "[1차 역량] 홍길동 면접", Start: "2024-06-10T10:00:00+09:00"},
	{ID: "ev2", Summary: "[최종] 이영희", Start: "2024-06-13T15:00:00+09:00", Description: "채용 최종 면접"},
	{ID: "ev3", Summary: "팀 점심", Start: "2024-06-12T12:00:00+09:00"},
	{ID: "ev4", Summary: "면접", Start: "bad"},
}

func newRoster(t *testing.T) *roster.Roster {
	t.Helper()
	r, err := roster.Load(context.Background(), store.NewMemoryStore(), roster.Options{
		Location: time.UTC,
		Now:      func() time.Time { return now },
	})
	require.NoError(t, err)
	return r
}

func staticSource(events []model.ExternalEvent) calendar.Source {
	return calendar.SourceFunc(func(context.Context, time.Time, time.Time) ([]model.ExternalEvent, error) {
		return events, nil
	})
}

func TestSyncPipeline(t *testing.T) {
	r := newRoster(t)
	s, err := New(Options{Source: staticSource(fetched), Roster: r, Now: func() time.Time { return now }})
	require.NoError(t, err)

	res, err := s.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, res.Fetched)
	assert.Equal(t, 3, res.Matched)
	assert.Equal(t, 3, res.Created)

	byEvent := map[string]model.Candidate{}
	for _, c := range r.Candidates() {
		byEvent[c.CalendarEventID] = c
	}
	assert.Equal(t, "홍길동", byEvent["ev1"].Name)
	assert.Equal(t, model.StageFirstTechnical, byEvent["ev1"].CurrentStage)
	assert.Equal(t, "이영희", byEvent["ev2"].Name)
	assert.Equal(t, model.StageFinal, byEvent["ev2"].CurrentStage)
	assert.Equal(t, "면접", byEvent["ev4"].Name, "empty parsed name falls back to the title")
	assert.Equal(t, now.UnixMilli(), *byEvent["ev4"].ScheduledTime)

	again, err := s.Sync(context.Background())
	require.NoError(t, err)
	assert.Zero(t, again.Created)
	assert.Len(t, r.Candidates(), 3)

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, again, last)
}

func TestSyncWindow(t *testing.T) {
	var gotStart, gotEnd time.Time
	src := calendar.SourceFunc(func(_ context.Context, start, end time.Time) ([]model.ExternalEvent, error) {
		gotStart, gotEnd = start, end
		return nil, nil
	})
	s, err := New(Options{Source: src, Roster: newRoster(t), Now: func() time.Time { return now }})
	require.NoError(t, err)

	_, err = s.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, -7), gotStart)
	assert.Equal(t, now.AddDate(0, 0, 7), gotEnd)
}

func TestSyncSkipsWhenLoggedOut(t *testing.T) {
	var calls atomic.Int32
	src := calendar.SourceFunc(func(context.Context, time.Time, time.Time) ([]model.ExternalEvent, error) {
		calls.Add(1)
		return fetched, nil
	})
	s, err := New(Options{Source: src, Auth: auth.Static(""), Roster: newRoster(t)})
	require.NoError(t, err)

	res, err := s.Sync(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Zero(t, calls.Load())
}

func TestSyncFetchErrorIsZeroEvents(t *testing.T) {
	src := calendar.SourceFunc(func(context.Context, time.Time, time.Time) ([]model.ExternalEvent, error) {
		return nil, errors.New("503")
	})
	r := newRoster(t)
	s, err := New(Options{Source: src, Auth: auth.Static("tok"), Roster: r})
	require.NoError(t, err)

	res, err := s.Sync(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Fetched)
	assert.Equal(t, "503", res.FetchError)
	assert.Empty(t, r.Candidates())
}

func TestConcurrentSyncsShareOneFetch(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	src := calendar.SourceFunc(func(context.Context, time.Time, time.Time) ([]model.ExternalEvent, error) {
		calls.Add(1)
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
		return fetched, nil
	})
	r := newRoster(t)
	s, err := New(Options{Source: src, Roster: r})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]Result, 5)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = s.Sync(context.Background())
	}()
	<-entered
	for i := 1; i < len(results); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = s.Sync(context.Background())
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(2))
	assert.Len(t, r.Candidates(), 3, "no duplicate creation from racing fetches")
}

func TestSharedSyncOutlivesCancelledCaller(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	var once sync.Once
	var sawErr atomic.Value
	src := calendar.SourceFunc(func(ctx context.Context, _, _ time.Time) ([]model.ExternalEvent, error) {
		once.Do(func() { close(entered) })
		<-release
		sawErr.Store(fmt.Sprint(ctx.Err()))
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return fetched, nil
	})
	r := newRoster(t)
	s, err := New(Options{Source: src, Roster: r, Now: func() time.Time { return now }})
	require.NoError(t, err)

	firstCtx, cancel := context.WithCancel(context.Background())
	var first, joined Result
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		first, _ = s.Sync(firstCtx)
	}()
	<-entered
	wg.Add(1)
	go func() {
		defer wg.Done()
		joined, _ = s.Sync(context.Background())
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	close(release)
	wg.Wait()

	assert.Equal(t, "<nil>", sawErr.Load())
	for _, res := range []Result{first, joined} {
		assert.Empty(t, res.FetchError)
		assert.Equal(t, 4, res.Fetched)
		assert.Equal(t, 3, res.Created)
	}
	assert.Len(t, r.Candidates(), 3)
}

func TestRunSyncsOnStartupAndLogin(t *testing.T) {
	var calls atomic.Int32
	src := calendar.SourceFunc(func(context.Context, time.Time, time.Time) ([]model.ExternalEvent, error) {
		calls.Add(1)
		return nil, nil
	})
	m := auth.Static("tok")
	s, err := New(Options{Source: src, Auth: m, Roster: newRoster(t)})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "@every 1h") }()

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, m.Logout())
	require.NoError(t, m.SetToken(&oauth2.Token{AccessToken: "fresh"}))
	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestRunRejectsBadSpec(t *testing.T) {
	s, err := New(Options{Source: staticSource(nil), Roster: newRoster(t)})
	require.NoError(t, err)
	assert.Error(t, s.Run(context.Background(), "not a cron spec"))
}

func TestNewRequiresSourceAndRoster(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

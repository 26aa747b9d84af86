// Package calsync pulls calendar events into the roster: fetch, keyword
// filter, title parse, reconcile. It runs on a cron schedule and right
// after login.
package calsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"

	"interviewpro/internal/calendar"
	"interviewpro/internal/intake"
	appLog "interviewpro/internal/log"
	"interviewpro/internal/roster"
)

// DefaultWindowDays is the fetch window on each side of now.
const DefaultWindowDays = 7

// AuthState is the part of the auth session the syncer needs. A nil
// AuthState means the source needs no login.
type AuthState interface {
	IsAuthenticated() bool
	Subscribe(fn func(authenticated bool)) (cancel func())
}

// Result describes one sync pass.
type Result struct {
	At      time.Time `json:"at"`
	Skipped bool      `json:"skipped"`
	Fetched int       `json:"fetched"`
	Matched int       `json:"matched"`
	Created int       `json:"created"`
	// FetchError is the swallowed source error, if any.
	FetchError string `json:"fetchError,omitempty"`
}

type Options struct {
	Source     calendar.Source
	Auth       AuthState
	Filter     *intake.Filter
	Roster     *roster.Roster
	WindowDays int
	Location   *time.Location
	Now        func() time.Time
}

// Syncer runs sync passes. At most one pass is in flight; concurrent
// callers wait for and share the running pass.
type Syncer struct {
	opts  Options
	group singleflight.Group

	mu   sync.Mutex
	last *Result
}

func New(opts Options) (*Syncer, error) {
	if opts.Source == nil || opts.Roster == nil {
		return nil, errors.New("calsync: source and roster are required")
	}
	if opts.Filter == nil {
		opts.Filter = intake.NewFilter(nil)
	}
	if opts.WindowDays <= 0 {
		opts.WindowDays = DefaultWindowDays
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Syncer{opts: opts}, nil
}

// Sync runs one pass. A source failure is logged and counts as zero events;
// only a failure to persist the roster is returned.
func (s *Syncer) Sync(ctx context.Context) (Result, error) {
	// The pass is shared; one caller going away must not cancel it for
	// the others that joined.
	runCtx := context.WithoutCancel(ctx)
	v, err, shared := s.group.Do("sync", func() (any, error) {
		return s.run(runCtx)
	})
	if shared {
		appLog.Debug("calsync: joined in-flight sync")
	}
	res, _ := v.(Result)
	return res, err
}

// Last returns the most recent completed pass.
func (s *Syncer) Last() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return Result{}, false
	}
	return *s.last, true
}

func (s *Syncer) run(ctx context.Context) (Result, error) {
	now := s.opts.Now()
	res := Result{At: now}

	if s.opts.Auth != nil && !s.opts.Auth.IsAuthenticated() {
		appLog.Debug("calsync: not authenticated; skipping")
		res.Skipped = true
		s.remember(res)
		return res, nil
	}

	window := time.Duration(s.opts.WindowDays) * 24 * time.Hour
	events, err := s.opts.Source.FetchEvents(ctx, now.Add(-window), now.Add(window))
	if err != nil {
		appLog.Error("calsync: fetch failed; treating as no events", err)
		res.FetchError = err.Error()
		events = nil
	}
	res.Fetched = len(events)

	matched := s.opts.Filter.Match(events)
	res.Matched = len(matched)

	items := make([]roster.Incoming, 0, len(matched))
	for _, ev := range matched {
		t := intake.ParseTitle(ev.Summary)
		items = append(items, roster.Incoming{Event: ev, Name: t.NameOrTitle(ev.Summary), Stage: t.Stage})
	}

	created, err := s.opts.Roster.Reconcile(ctx, items)
	if err != nil {
		return res, fmt.Errorf("calsync: reconcile: %w", err)
	}
	res.Created = len(created)

	appLog.Info("calsync: sync done", "fetched", res.Fetched, "matched", res.Matched, "created", res.Created)
	s.remember(res)
	return res, nil
}

func (s *Syncer) remember(r Result) {
	s.mu.Lock()
	s.last = &r
	s.mu.Unlock()
}

// Run syncs once, then on every cron tick (spec evaluated in the display
// location) and after every login, until ctx is cancelled.
func (s *Syncer) Run(ctx context.Context, spec string) error {
	c := cron.New(cron.WithLocation(s.opts.Location))
	if _, err := c.AddFunc(spec, func() { s.syncLogged(ctx, "cron") }); err != nil {
		return fmt.Errorf("calsync: cron spec %q: %w", spec, err)
	}

	if s.opts.Auth != nil {
		unsubscribe := s.opts.Auth.Subscribe(func(ok bool) {
			if ok {
				go s.syncLogged(ctx, "login")
			}
		})
		defer unsubscribe()
	}

	s.syncLogged(ctx, "startup")
	c.Start()
	appLog.Info("calsync: scheduler started", "spec", spec)

	<-ctx.Done()
	<-c.Stop().Done()
	appLog.Info("calsync: scheduler stopped")
	return nil
}

func (s *Syncer) syncLogged(ctx context.Context, trigger string) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.Sync(ctx); err != nil {
		appLog.Error("calsync: sync failed", err, "trigger", trigger)
	}
}

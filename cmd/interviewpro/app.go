package main

import (
	"context"
	"errors"
	"time"

	"interviewpro/internal/auth"
	"interviewpro/internal/calendar"
	"interviewpro/internal/calsync"
	"interviewpro/internal/config"
	"interviewpro/internal/ics"
	"interviewpro/internal/insight"
	"interviewpro/internal/intake"
	appLog "interviewpro/internal/log"
	"interviewpro/internal/roster"
	"interviewpro/internal/session"
	"interviewpro/internal/store"
	"interviewpro/internal/web"
)

// app holds the services shared by the subcommands.
type app struct {
	cfg        *config.Config
	loc        *time.Location
	store      store.Store
	roster     *roster.Roster
	auth       *auth.Manager
	syncer     *calsync.Syncer
	bank       *session.Bank
	drafts     *session.Drafts
	summarizer insight.Summarizer

	closers []func() error
}

var errNoCalendar = errors.New("calendar sync is not configured")

// newApp opens the store and wires store -> roster -> source -> syncer.
// A calendar that cannot be set up leaves syncer nil; the board still works.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	st, err := store.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:     cfg,
		loc:     cfg.Location(),
		store:   st,
		bank:    session.NewBank(st),
		drafts:  session.NewDrafts(st),
		closers: []func() error{st.Close},
	}

	a.roster, err = roster.Load(ctx, st, roster.Options{LegacyIDs: cfg.LegacyIDs, Location: a.loc})
	if err != nil {
		a.Close()
		return nil, err
	}

	if err := a.setupCalendar(); err != nil {
		appLog.Warn("calendar unavailable; sync disabled", "provider", cfg.Calendar.Provider, "err", err.Error())
	}

	a.summarizer = insight.Unavailable{}
	if key := cfg.GeminiAPIKey(); key != "" {
		g, err := insight.NewGemini(ctx, key, cfg.Gemini.Model)
		if err != nil {
			appLog.Error("gemini unavailable; summaries disabled", err)
		} else {
			a.summarizer = g
			a.closers = append(a.closers, g.Close)
		}
	} else {
		appLog.Debug("no gemini api key; summaries disabled", "env", cfg.Gemini.APIKeyEnv)
	}
	return a, nil
}

func (a *app) setupCalendar() error {
	cc := a.cfg.Calendar
	opts := calsync.Options{
		Filter:     intake.NewFilter(a.cfg.Keywords),
		Roster:     a.roster,
		WindowDays: cc.WindowDays,
		Location:   a.loc,
	}

	switch cc.Provider {
	case config.ProviderICS:
		if len(cc.ICS) == 0 {
			return errors.New("no ics feeds configured")
		}
		opts.Source = calendar.NewICSSource(ics.NewFetcher(cc.CacheDir, nil), cc.ICS, a.loc)
	default:
		m, err := auth.FromCredentialsFile(cc.CredentialsFile, cc.TokenFile, cc.RedirectURL)
		if err != nil {
			return err
		}
		a.auth = m
		opts.Auth = m
		opts.Source = calendar.NewGoogleSource(m, cc.CalendarID)
	}

	s, err := calsync.New(opts)
	if err != nil {
		return err
	}
	a.syncer = s
	return nil
}

// server builds the web server over the app services.
func (a *app) server() *web.Server {
	opts := web.Options{
		Config:     a.cfg,
		Roster:     a.roster,
		Syncer:     a.syncer,
		Bank:       a.bank,
		Drafts:     a.drafts,
		Summarizer: a.summarizer,
	}
	if a.auth != nil {
		opts.Auth = a.auth
	}
	return web.NewServer(opts)
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			appLog.Error("close failed", err)
		}
	}
}

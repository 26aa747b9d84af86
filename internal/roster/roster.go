// Package roster keeps the persisted candidate list in sync with the
// calendar. Every mutation is written through to the store before it
// becomes visible in memory.
package roster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	appLog "interviewpro/internal/log"
	"interviewpro/internal/model"
	"interviewpro/internal/store"
)

// StorageKey is the store key of the roster document.
const StorageKey = "interview_pro_candidates"

// DefaultLegacyIDs are seed candidates from early demo builds.
var DefaultLegacyIDs = []string{"c1", "c2", "c3"}

var ErrNotFound = errors.New("roster: candidate not found")

// errUnchanged lets an update function skip the write.
var errUnchanged = errors.New("roster: unchanged")

// Options configures Load.
type Options struct {
	// LegacyIDs are removed by the load-time cleanup. Nil uses
	// DefaultLegacyIDs; an empty non-nil slice disables removal.
	LegacyIDs []string

	// Location is used for event starts without an offset (all-day
	// events). Nil means time.Local.
	Location *time.Location

	// Now and NewID are injectable for tests.
	Now   func() time.Time
	NewID func() string
}

// Roster is the in-memory view of the persisted candidate document.
type Roster struct {
	mu         sync.Mutex
	store      store.Store
	candidates []model.Candidate
	loc        *time.Location
	now        func() time.Time
	newID      func() string
}

// Load reads the roster document and runs the one-time legacy cleanup.
// A document that fails to decode is treated as an empty roster.
func Load(ctx context.Context, st store.Store, opts Options) (*Roster, error) {
	if opts.LegacyIDs == nil {
		opts.LegacyIDs = DefaultLegacyIDs
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return "cal-" + uuid.NewString() }
	}

	if opts.Location == nil {
		opts.Location = time.Local
	}

	r := &Roster{store: st, loc: opts.Location, now: opts.Now, newID: opts.NewID}

	raw, ok, err := st.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("roster: load: %w", err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return r, nil
	}

	var parsed []model.Candidate
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		appLog.Error("roster: stored document is malformed; starting empty", err)
		return r, nil
	}

	cleaned := Cleanup(parsed, opts.LegacyIDs)
	r.candidates = cleaned
	if len(cleaned) != len(parsed) {
		if err := r.persist(ctx, cleaned); err != nil {
			return nil, err
		}
		appLog.Info("roster: legacy cleanup", "before", len(parsed), "after", len(cleaned))
	}
	return r, nil
}

// Cleanup removes legacy seed ids and collapses candidates sharing a
// calendar event id into the one with the latest scheduled time. Ties keep
// the first record seen. Candidates without an event id are always kept.
// The relative order of surviving records is preserved.
func Cleanup(in []model.Candidate, legacyIDs []string) []model.Candidate {
	deny := make(map[string]struct{}, len(legacyIDs))
	for _, id := range legacyIDs {
		deny[id] = struct{}{}
	}

	out := make([]model.Candidate, 0, len(in))
	slot := make(map[string]int) // calendarEventId -> index in out
	for _, c := range in {
		if _, drop := deny[c.ID]; drop {
			continue
		}
		if c.CalendarEventID == "" {
			out = append(out, c)
			continue
		}
		i, seen := slot[c.CalendarEventID]
		if !seen {
			slot[c.CalendarEventID] = len(out)
			out = append(out, c)
			continue
		}
		if scheduledOrZero(c) > scheduledOrZero(out[i]) {
			out[i] = c
		}
	}
	return out
}

func scheduledOrZero(c model.Candidate) int64 {
	if c.ScheduledTime == nil {
		return 0
	}
	return *c.ScheduledTime
}

// Candidates returns a snapshot of the roster in stored order.
func (r *Roster) Candidates() []model.Candidate {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Candidate, len(r.candidates))
	for i, c := range r.candidates {
		out[i] = c.Clone()
	}
	return out
}

// Get returns a copy of the candidate with the given id.
func (r *Roster) Get(id string) (model.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return model.Candidate{}, ErrNotFound
	}
	return r.candidates[i].Clone(), nil
}

func (r *Roster) indexOf(id string) int {
	for i, c := range r.candidates {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// update runs fn on a copy of the roster, persists the result and only
// then swaps it in. Caller must not hold r.mu.
func (r *Roster) update(ctx context.Context, fn func([]model.Candidate) ([]model.Candidate, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]model.Candidate, len(r.candidates))
	for i, c := range r.candidates {
		next[i] = c.Clone()
	}
	next, err := fn(next)
	if errors.Is(err, errUnchanged) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := r.persist(ctx, next); err != nil {
		return err
	}
	r.candidates = next
	return nil
}

func (r *Roster) persist(ctx context.Context, cs []model.Candidate) error {
	if cs == nil {
		cs = []model.Candidate{}
	}
	data, err := json.Marshal(cs)
	if err != nil {
		return fmt.Errorf("roster: encode: %w", err)
	}
	if err := r.store.Set(ctx, StorageKey, string(data)); err != nil {
		return fmt.Errorf("roster: persist: %w", err)
	}
	return nil
}

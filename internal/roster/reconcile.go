package roster

import (
	"context"
	"fmt"
	"strings"
	"time"

	appLog "interviewpro/internal/log"
	"interviewpro/internal/model"
)

// Incoming is a filtered calendar event together with its parsed title.
type Incoming struct {
	Event model.ExternalEvent
	Name  string
	Stage model.Stage
}

var startLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseStart converts an event start string to a time. Offset-less values
// are read in loc. ok is false when nothing matched.
func ParseStart(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range startLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Reconcile creates a candidate for every incoming event whose id is not
// yet on the roster. Events already on the roster are left untouched; the
// roster is never updated from a re-fetched event. It returns the newly
// created candidates.
func (r *Roster) Reconcile(ctx context.Context, items []Incoming) ([]model.Candidate, error) {
	var created []model.Candidate

	err := r.update(ctx, func(cs []model.Candidate) ([]model.Candidate, error) {
		known := make(map[string]struct{}, len(cs))
		for _, c := range cs {
			if c.CalendarEventID != "" {
				known[c.CalendarEventID] = struct{}{}
			}
		}
		for _, it := range items {
			if it.Event.ID == "" {
				appLog.Warn("roster: skipping event without id", "summary", it.Event.Summary)
				continue
			}
			if _, ok := known[it.Event.ID]; ok {
				continue
			}
			c := r.fromEvent(it.Name, it.Event.Description, it.Event.ID, it.Event.Start, it.Stage)
			known[it.Event.ID] = struct{}{}
			cs = append(cs, c)
			created = append(created, c.Clone())
		}
		if len(created) == 0 {
			return nil, errUnchanged
		}
		return cs, nil
	})
	if err != nil {
		return nil, err
	}

	for _, c := range created {
		at, _ := c.Scheduled()
		appLog.Info("roster: candidate created from calendar event",
			"id", c.ID,
			"name", c.Name,
			"event_id", c.CalendarEventID,
			"scheduled", at.Format(time.RFC3339),
			"stage", string(c.CurrentStage),
		)
	}
	return created, nil
}

// CreateFromEvent adds a candidate for a single calendar event and returns
// its id, ready to start a session. If the event is already on the roster
// the existing candidate's id is returned.
func (r *Roster) CreateFromEvent(ctx context.Context, name, description, eventID, startISO string, stage model.Stage) (string, error) {
	var id string
	err := r.update(ctx, func(cs []model.Candidate) ([]model.Candidate, error) {
		if eventID != "" {
			for _, c := range cs {
				if c.CalendarEventID == eventID {
					id = c.ID
					return nil, errUnchanged
				}
			}
		}
		c := r.fromEvent(name, description, eventID, startISO, stage)
		id = c.ID
		return append(cs, c), nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Roster) fromEvent(name, description, eventID, startISO string, stage model.Stage) model.Candidate {
	at, ok := ParseStart(startISO, r.loc)
	if !ok {
		at = r.now()
		if startISO != "" {
			appLog.Warn("roster: unparsable event start; using now", "event_id", eventID, "start", startISO)
		}
	}
	if !stage.IsValid() {
		stage = model.StageFirstTechnical
	}
	return model.Candidate{
		ID:              r.newID(),
		Name:            name,
		Role:            model.RoleUnassigned,
		Notes:           []model.InterviewNote{},
		ScheduledTime:   model.Millis(at),
		PortfolioURL:    description,
		CalendarEventID: eventID,
		Status:          model.StatusScheduled,
		CurrentStage:    stage,
	}
}

// ManualCandidate describes a candidate added by hand rather than from the
// calendar.
type ManualCandidate struct {
	Name         string
	Role         model.JobRole
	ResumeURL    string
	PortfolioURL string
	Scheduled    *time.Time
}

// AddManual adds a candidate without a calendar event and returns its id.
func (r *Roster) AddManual(ctx context.Context, in ManualCandidate) (string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return "", fmt.Errorf("roster: candidate name is required")
	}
	role := in.Role
	if role == "" {
		role = model.RoleUnassigned
	}
	if !role.IsValid() {
		return "", fmt.Errorf("roster: invalid role %q", role)
	}

	c := model.Candidate{
		ID:           r.newID(),
		Name:         name,
		Role:         role,
		Notes:        []model.InterviewNote{},
		ResumeURL:    in.ResumeURL,
		PortfolioURL: in.PortfolioURL,
		Status:       model.StatusScheduled,
	}
	if in.Scheduled != nil {
		c.ScheduledTime = model.Millis(*in.Scheduled)
	}

	err := r.update(ctx, func(cs []model.Candidate) ([]model.Candidate, error) {
		return append(cs, c), nil
	})
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

func (r *Roster) mutate(ctx context.Context, id string, fn func(*model.Candidate) error) error {
	return r.update(ctx, func(cs []model.Candidate) ([]model.Candidate, error) {
		for i := range cs {
			if cs[i].ID == id {
				if err := fn(&cs[i]); err != nil {
					return nil, err
				}
				return cs, nil
			}
		}
		return nil, ErrNotFound
	})
}

// StartSession marks the candidate's interview as in progress.
func (r *Roster) StartSession(ctx context.Context, id string) error {
	return r.SetStatus(ctx, id, model.StatusInProgress)
}

// SetStatus sets the candidate status.
func (r *Roster) SetStatus(ctx context.Context, id string, status model.Status) error {
	if !status.IsValid() {
		return fmt.Errorf("roster: invalid status %q", status)
	}
	return r.mutate(ctx, id, func(c *model.Candidate) error {
		c.Status = status
		return nil
	})
}

// SetRole assigns the job role, typically for calendar-created candidates.
func (r *Roster) SetRole(ctx context.Context, id string, role model.JobRole) error {
	if !role.IsValid() {
		return fmt.Errorf("roster: invalid role %q", role)
	}
	return r.mutate(ctx, id, func(c *model.Candidate) error {
		c.Role = role
		return nil
	})
}

// AddNote attaches a finished note and marks the interview completed.
func (r *Roster) AddNote(ctx context.Context, id string, note model.InterviewNote) error {
	if note.CandidateID == "" {
		note.CandidateID = id
	}
	if note.CandidateID != id {
		return fmt.Errorf("roster: note belongs to %q, not %q", note.CandidateID, id)
	}
	if err := note.Validate(); err != nil {
		return fmt.Errorf("roster: invalid note: %w", err)
	}
	return r.mutate(ctx, id, func(c *model.Candidate) error {
		c.Notes = append(c.Notes, note)
		c.Status = model.StatusCompleted
		return nil
	})
}

// Remove deletes a candidate.
func (r *Roster) Remove(ctx context.Context, id string) error {
	return r.update(ctx, func(cs []model.Candidate) ([]model.Candidate, error) {
		for i := range cs {
			if cs[i].ID == id {
				return append(cs[:i], cs[i+1:]...), nil
			}
		}
		return nil, ErrNotFound
	})
}

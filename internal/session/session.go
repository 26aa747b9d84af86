package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	appLog "interviewpro/internal/log"
	"interviewpro/internal/model"
	"interviewpro/internal/store"
)

// ErrNoAnswers is returned by Finish when no question was recorded.
var ErrNoAnswers = errors.New("session: at least one question must be recorded")

// DraftKey is the store key of a candidate's unsaved session.
func DraftKey(candidateID string) string {
	return "interview_draft_" + candidateID
}

// Draft is the autosaved state of an unfinished session.
type Draft struct {
	SelectedQuestions []model.Answer `json:"selectedQuestions"`
	OverallPros       string         `json:"overallPros"`
	OverallCons       string         `json:"overallCons"`
	SelectedStage     model.Stage    `json:"selectedStage"`
	Timestamp         int64          `json:"timestamp"`
}

func (d Draft) empty() bool {
	return len(d.SelectedQuestions) == 0 && d.OverallPros == "" && d.OverallCons == ""
}

// Drafts stores session drafts.
type Drafts struct {
	store store.Store
}

func NewDrafts(st store.Store) *Drafts { return &Drafts{store: st} }

// Load returns the candidate's draft, or nil when there is none or it
// cannot be decoded.
func (d *Drafts) Load(ctx context.Context, candidateID string) (*Draft, error) {
	raw, ok, err := d.store.Get(ctx, DraftKey(candidateID))
	if err != nil {
		return nil, fmt.Errorf("session: load draft: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var dr Draft
	if err := json.Unmarshal([]byte(raw), &dr); err != nil {
		appLog.Warn("session: discarding malformed draft", "candidate", candidateID)
		return nil, nil
	}
	return &dr, nil
}

// Save stores a draft. Empty drafts are not written.
func (d *Drafts) Save(ctx context.Context, candidateID string, dr Draft) error {
	if dr.empty() {
		return nil
	}
	data, err := json.Marshal(dr)
	if err != nil {
		return fmt.Errorf("session: encode draft: %w", err)
	}
	return d.store.Set(ctx, DraftKey(candidateID), string(data))
}

func (d *Drafts) Clear(ctx context.Context, candidateID string) error {
	return d.store.Delete(ctx, DraftKey(candidateID))
}

// Session is one interviewer's live record for a candidate. It is not safe
// for concurrent use.
type Session struct {
	CandidateID string
	Interviewer model.Interviewer
	Answers     []model.Answer
	Pros        string
	Cons        string
	Stage       model.Stage

	drafts *Drafts
	now    func() time.Time
	newID  func() string
}

// Start opens a session, restoring the candidate's draft when there is one.
// Without a draft the stage defaults to the candidate's current stage.
func Start(ctx context.Context, drafts *Drafts, c model.Candidate, interviewer model.Interviewer) (*Session, error) {
	s := &Session{
		CandidateID: c.ID,
		Interviewer: interviewer,
		Stage:       c.CurrentStage,
		drafts:      drafts,
		now:         time.Now,
		newID:       func() string { return "n-" + uuid.NewString() },
	}
	if !s.Stage.IsValid() {
		s.Stage = model.StageFirstTechnical
	}
	if drafts == nil {
		return s, nil
	}
	dr, err := drafts.Load(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if dr != nil {
		s.Answers = dr.SelectedQuestions
		s.Pros, s.Cons = dr.OverallPros, dr.OverallCons
		if dr.SelectedStage.IsValid() {
			s.Stage = dr.SelectedStage
		}
		appLog.Debug("session: draft restored", "candidate", c.ID, "answers", len(s.Answers))
	}
	return s, nil
}

// AddQuestion puts a bank question on the board. A non-custom question
// already on the board is not added twice; the result reports whether it
// was added.
func (s *Session) AddQuestion(q model.Question) bool {
	if !strings.HasPrefix(q.ID, CustomPrefix) {
		for _, a := range s.Answers {
			if a.QuestionID == q.ID {
				return false
			}
		}
	}
	s.Answers = append(s.Answers, model.Answer{QuestionID: q.ID, QuestionText: q.Text})
	return true
}

// AddCustom adds an ad hoc question typed during the interview.
func (s *Session) AddCustom(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New("session: question text is required")
	}
	s.AddQuestion(model.Question{ID: CustomPrefix + "-" + uuid.NewString(), Text: text})
	return nil
}

func (s *Session) UpdateAnswer(i int, text string) error {
	if i < 0 || i >= len(s.Answers) {
		return fmt.Errorf("session: no question at index %d", i)
	}
	s.Answers[i].AnswerText = text
	return nil
}

func (s *Session) Remove(i int) error {
	if i < 0 || i >= len(s.Answers) {
		return fmt.Errorf("session: no question at index %d", i)
	}
	s.Answers = append(s.Answers[:i], s.Answers[i+1:]...)
	return nil
}

// Autosave writes the current state as the candidate's draft.
func (s *Session) Autosave(ctx context.Context) error {
	if s.drafts == nil {
		return nil
	}
	return s.drafts.Save(ctx, s.CandidateID, Draft{
		SelectedQuestions: s.Answers,
		OverallPros:       s.Pros,
		OverallCons:       s.Cons,
		SelectedStage:     s.Stage,
		Timestamp:         s.now().UnixMilli(),
	})
}

// Finish builds the note and clears the draft. The note still has to be
// attached to the candidate by the caller.
func (s *Session) Finish(ctx context.Context) (model.InterviewNote, error) {
	if len(s.Answers) == 0 {
		return model.InterviewNote{}, ErrNoAnswers
	}
	note := model.InterviewNote{
		ID:          s.newID(),
		CandidateID: s.CandidateID,
		Interviewer: s.Interviewer,
		Answers:     append([]model.Answer(nil), s.Answers...),
		OverallPros: s.Pros,
		OverallCons: s.Cons,
		Timestamp:   s.now().UnixMilli(),
		Stage:       s.Stage,
	}
	if err := note.Validate(); err != nil {
		return model.InterviewNote{}, fmt.Errorf("session: invalid note: %w", err)
	}
	if s.drafts != nil {
		if err := s.drafts.Clear(ctx, s.CandidateID); err != nil {
			appLog.Error("session: clearing draft failed", err, "candidate", s.CandidateID)
		}
	}
	return note, nil
}

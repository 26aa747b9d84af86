package model

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// JobRole is the closed set of roles a candidate can be hired for.
type JobRole string

const (
	RoleFrontend       JobRole = "Frontend Developer"
	RoleBackend        JobRole = "Backend Developer"
	RoleProductManager JobRole = "Product Manager"
	RoleDesigner       JobRole = "Product Designer"
	RoleHRSpecialist   JobRole = "HR Specialist"

	// RoleUnassigned is given to candidates created from calendar events,
	// where the title carries no role information.
	RoleUnassigned JobRole = "면접"
)

// Roles lists the assignable roles in display order.
var Roles = []JobRole{RoleFrontend, RoleBackend, RoleProductManager, RoleDesigner, RoleHRSpecialist}

func (r JobRole) IsValid() bool {
	switch r {
	case RoleFrontend, RoleBackend, RoleProductManager, RoleDesigner, RoleHRSpecialist, RoleUnassigned:
		return true
	default:
		return false
	}
}

// Stage is a step in the multi-round interview process.
type Stage string

const (
	StageFirstTechnical Stage = "1차 역량 인터뷰"
	StageSecondCulture  Stage = "2차 컬쳐 인터뷰"
	StageFinal          Stage = "최종 인터뷰"
	StageCoffeeChat     Stage = "커피챗"
)

// Stages lists the stages in process order.
var Stages = []Stage{StageFirstTechnical, StageSecondCulture, StageFinal, StageCoffeeChat}

func (s Stage) IsValid() bool {
	switch s {
	case StageFirstTechnical, StageSecondCulture, StageFinal, StageCoffeeChat:
		return true
	default:
		return false
	}
}

type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusNoShow     Status = "no_show"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusNoShow:
		return true
	default:
		return false
	}
}

type Interviewer struct {
	Name       string `json:"name" validate:"required"`
	Department string `json:"department"`
}

type Answer struct {
	QuestionID   string `json:"questionId" validate:"required"`
	QuestionText string `json:"questionText" validate:"required"`
	AnswerText   string `json:"answerText"`
}

// InterviewNote is one interviewer's record of one session. Notes are
// never edited after they are attached to a candidate.
type InterviewNote struct {
	ID          string      `json:"id" validate:"required"`
	CandidateID string      `json:"candidateId" validate:"required"`
	Interviewer Interviewer `json:"interviewer"`
	Answers     []Answer    `json:"answers" validate:"min=1,dive"`
	OverallPros string      `json:"overallPros"`
	OverallCons string      `json:"overallCons"`
	Timestamp   int64       `json:"timestamp" validate:"gt=0"`
	Stage       Stage       `json:"stage" validate:"required"`
}

// Time returns the note timestamp as a time.Time.
func (n InterviewNote) Time() time.Time {
	return time.UnixMilli(n.Timestamp)
}

// Candidate is a single roster entry.
type Candidate struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Role  JobRole         `json:"role"`
	Notes []InterviewNote `json:"notes"`

	// ScheduledTime is epoch millis; nil for manual entries without a slot.
	ScheduledTime *int64 `json:"scheduledTime,omitempty"`

	ResumeURL    string `json:"resumeUrl,omitempty"`
	PortfolioURL string `json:"portfolioUrl,omitempty"`

	// CalendarEventID references the originating calendar event and is the
	// dedup key. Empty for manually created candidates.
	CalendarEventID string `json:"calendarEventId,omitempty"`

	Status       Status `json:"status,omitempty"`
	CurrentStage Stage  `json:"currentStage,omitempty"`
}

// Scheduled returns the scheduled time and whether one is set.
func (c Candidate) Scheduled() (time.Time, bool) {
	if c.ScheduledTime == nil {
		return time.Time{}, false
	}
	return time.UnixMilli(*c.ScheduledTime), true
}

// Clone returns a copy that shares no slices or pointers with c.
func (c Candidate) Clone() Candidate {
	out := c
	if c.ScheduledTime != nil {
		ts := *c.ScheduledTime
		out.ScheduledTime = &ts
	}
	if c.Notes != nil {
		out.Notes = make([]InterviewNote, len(c.Notes))
		for i, n := range c.Notes {
			n.Answers = append([]Answer(nil), n.Answers...)
			out.Notes[i] = n
		}
	}
	return out
}

// Millis is a small helper for building optional timestamps.
func Millis(t time.Time) *int64 {
	ms := t.UnixMilli()
	return &ms
}

type Question struct {
	ID       string `json:"id" validate:"required"`
	Category string `json:"category" validate:"required"`
	Text     string `json:"text" validate:"required"`
}

// ExternalEvent is a calendar event as returned by a source. It lives only
// for the duration of one sync.
type ExternalEvent struct {
	ID          string `json:"id"`
	Summary     string `json:"summary"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Description string `json:"description,omitempty"`
}

var validate = validator.New()

// Validate checks required fields of a note before it is attached.
func (n *InterviewNote) Validate() error {
	return validate.Struct(n)
}

// Validate checks a question before it is stored in the question bank.
func (q *Question) Validate() error {
	return validate.Struct(q)
}

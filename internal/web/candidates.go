package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"interviewpro/internal/insight"
	appLog "interviewpro/internal/log"
	"interviewpro/internal/model"
	"interviewpro/internal/roster"
	"interviewpro/internal/session"
)

// candidateDTO adds derived fields to a roster entry.
type candidateDTO struct {
	model.Candidate
	LatestStage string `json:"latestStage"`
}

func toDTO(c model.Candidate) candidateDTO {
	if c.Notes == nil {
		c.Notes = []model.InterviewNote{}
	}
	return candidateDTO{Candidate: c, LatestStage: insight.LatestStage(c)}
}

// writeRosterError maps roster and session errors to HTTP statuses.
func writeRosterError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, roster.ErrNotFound), errors.Is(err, session.ErrQuestionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrNoAnswers), errors.As(err, &verrs):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		appLog.Error("web: request failed", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleListCandidates(w http.ResponseWriter, _ *http.Request) {
	cs := s.opts.Roster.Candidates()
	out := make([]candidateDTO, 0, len(cs))
	for _, c := range cs {
		out = append(out, toDTO(c))
	}
	writeJSON(w, http.StatusOK, out)
}

type addCandidateRequest struct {
	Name          string        `json:"name"`
	Role          model.JobRole `json:"role"`
	ResumeURL     string        `json:"resumeUrl"`
	PortfolioURL  string        `json:"portfolioUrl"`
	ScheduledTime *int64        `json:"scheduledTime"`
}

func (s *Server) handleAddCandidate(w http.ResponseWriter, r *http.Request) {
	var req addCandidateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Role != "" && !req.Role.IsValid() {
		writeError(w, http.StatusBadRequest, "unknown role")
		return
	}

	in := roster.ManualCandidate{
		Name:         req.Name,
		Role:         req.Role,
		ResumeURL:    req.ResumeURL,
		PortfolioURL: req.PortfolioURL,
	}
	if req.ScheduledTime != nil {
		at := time.UnixMilli(*req.ScheduledTime)
		in.Scheduled = &at
	}
	id, err := s.opts.Roster.AddManual(r.Context(), in)
	if err != nil {
		writeRosterError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	c, err := s.opts.Roster.Get(r.PathValue("id"))
	if err != nil {
		writeRosterError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDTO(c))
}

func (s *Server) handleDeleteCandidate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.opts.Roster.Remove(r.Context(), id); err != nil {
		writeRosterError(w, err)
		return
	}
	if s.opts.Drafts != nil {
		if err := s.opts.Drafts.Clear(r.Context(), id); err != nil {
			appLog.Warn("web: draft cleanup failed", "candidate", id, "err", err.Error())
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleStartSession marks the interview in progress and returns the
// session state, restored from the draft when there is one.
func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	if err := s.opts.Roster.StartSession(ctx, id); err != nil {
		writeRosterError(w, err)
		return
	}
	c, err := s.opts.Roster.Get(id)
	if err != nil {
		writeRosterError(w, err)
		return
	}
	sess, err := session.Start(ctx, s.opts.Drafts, c, model.Interviewer{})
	if err != nil {
		writeRosterError(w, err)
		return
	}
	answers := sess.Answers
	if answers == nil {
		answers = []model.Answer{}
	}
	writeJSON(w, http.StatusOK, session.Draft{
		SelectedQuestions: answers,
		OverallPros:       sess.Pros,
		OverallCons:       sess.Cons,
		SelectedStage:     sess.Stage,
	})
}

func (s *Server) handleSetRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role model.JobRole `json:"role"`
	}
	if err := decodeJSON(w, r, &req); err != nil || !req.Role.IsValid() {
		writeError(w, http.StatusBadRequest, "a valid role is required")
		return
	}
	if err := s.opts.Roster.SetRole(r.Context(), r.PathValue("id"), req.Role); err != nil {
		writeRosterError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status model.Status `json:"status"`
	}
	if err := decodeJSON(w, r, &req); err != nil || !req.Status.IsValid() {
		writeError(w, http.StatusBadRequest, "a valid status is required")
		return
	}
	if err := s.opts.Roster.SetStatus(r.Context(), r.PathValue("id"), req.Status); err != nil {
		writeRosterError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.opts.Roster.Get(id); err != nil {
		writeRosterError(w, err)
		return
	}
	dr, err := s.opts.Drafts.Load(r.Context(), id)
	if err != nil {
		writeRosterError(w, err)
		return
	}
	if dr == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, dr)
}

func (s *Server) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.opts.Roster.Get(id); err != nil {
		writeRosterError(w, err)
		return
	}
	var dr session.Draft
	if err := decodeJSON(w, r, &dr); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	dr.Timestamp = s.opts.Now().UnixMilli()
	if err := s.opts.Drafts.Save(r.Context(), id, dr); err != nil {
		writeRosterError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type noteRequest struct {
	Interviewer model.Interviewer `json:"interviewer"`
	Stage       model.Stage       `json:"stage"`
	Answers     []model.Answer    `json:"answers"`
	OverallPros string            `json:"overallPros"`
	OverallCons string            `json:"overallCons"`
}

// handleAddNote finishes a session: the note is validated, attached to the
// candidate and the draft is cleared.
func (s *Server) handleAddNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	var req noteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Stage != "" && !req.Stage.IsValid() {
		writeError(w, http.StatusBadRequest, "unknown stage")
		return
	}

	c, err := s.opts.Roster.Get(id)
	if err != nil {
		writeRosterError(w, err)
		return
	}
	sess, err := session.Start(ctx, s.opts.Drafts, c, req.Interviewer)
	if err != nil {
		writeRosterError(w, err)
		return
	}
	sess.Answers = req.Answers
	sess.Pros, sess.Cons = req.OverallPros, req.OverallCons
	if req.Stage != "" {
		sess.Stage = req.Stage
	}

	note, err := sess.Finish(ctx)
	if err != nil {
		writeRosterError(w, err)
		return
	}
	if err := s.opts.Roster.AddNote(ctx, id, note); err != nil {
		writeRosterError(w, err)
		return
	}
	appLog.Info("web: note recorded", "candidate", id, "stage", string(note.Stage), "answers", len(note.Answers))
	writeJSON(w, http.StatusCreated, note)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	c, err := s.opts.Roster.Get(r.PathValue("id"))
	if err != nil {
		writeRosterError(w, err)
		return
	}
	summary, ok := insight.ConsolidatedSummary(r.Context(), s.opts.Summarizer, c)
	writeJSON(w, http.StatusOK, map[string]any{"available": ok, "summary": summary})
}

func (s *Server) handlePersona(w http.ResponseWriter, r *http.Request) {
	role := model.JobRole(r.URL.Query().Get("role"))
	if !role.IsValid() || role == model.RoleUnassigned {
		writeError(w, http.StatusBadRequest, "a valid role is required")
		return
	}
	persona := insight.JobPersona(r.Context(), s.opts.Summarizer, role, s.opts.Roster.Candidates())
	writeJSON(w, http.StatusOK, map[string]any{"role": role, "persona": persona})
}

func (s *Server) handleRoleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, insight.RoleStats(s.opts.Roster.Candidates()))
}

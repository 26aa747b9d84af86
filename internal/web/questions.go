package web

import (
	"net/http"
	"strings"

	"interviewpro/internal/model"
	"interviewpro/internal/session"
)

type questionsResponse struct {
	Categories []string         `json:"categories"`
	Questions  []model.Question `json:"questions"`
}

// handleListQuestions returns the bank, optionally narrowed by ?category=.
func (s *Server) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	qs, err := s.opts.Bank.List(r.Context())
	if err != nil {
		writeRosterError(w, err)
		return
	}
	category := r.URL.Query().Get("category")
	if category == "" {
		category = session.CategoryAll
	}
	writeJSON(w, http.StatusOK, questionsResponse{
		Categories: session.Categories(qs),
		Questions:  session.Filter(qs, category),
	})
}

func (s *Server) handleAddQuestion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
		Text     string `json:"text"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Category) == "" || strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "category and text are required")
		return
	}
	q, err := s.opts.Bank.Add(r.Context(), req.Category, req.Text)
	if err != nil {
		writeRosterError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

func (s *Server) handleEditQuestion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(w, r, &req); err != nil || strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if err := s.opts.Bank.Edit(r.Context(), r.PathValue("id"), req.Text); err != nil {
		writeRosterError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	if err := s.opts.Bank.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeRosterError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResetQuestions(w http.ResponseWriter, r *http.Request) {
	if err := s.opts.Bank.Reset(r.Context()); err != nil {
		writeRosterError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

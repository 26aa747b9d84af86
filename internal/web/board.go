package web

import (
	_ "embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"interviewpro/internal/board"
	"interviewpro/internal/export"
	appLog "interviewpro/internal/log"
	"interviewpro/internal/model"
)

//go:embed templates/board.html
var boardHTML string

var boardTmpl = template.Must(template.New("board").Funcs(template.FuncMap{
	"clock": func(c model.Candidate, loc *time.Location) string {
		at, ok := c.Scheduled()
		if !ok {
			return ""
		}
		return at.In(loc).Format("1/2 (Mon) 15:04")
	},
	"rangeLabel": board.RangeLabel,
}).Parse(boardHTML))

type boardPage struct {
	Title    string
	Now      time.Time
	Location *time.Location
	Buckets  []board.Bucket
	Stats    board.Stats
}

func (s *Server) buckets() ([]board.Bucket, *time.Location) {
	loc := s.opts.Config.Location()
	labels := board.LabelsFor(s.opts.Config.Locale)
	return board.Buckets(s.opts.Roster.Candidates(), s.opts.Now(), loc, labels), loc
}

func (s *Server) handleBoard(w http.ResponseWriter, _ *http.Request) {
	buckets, _ := s.buckets()
	writeJSON(w, http.StatusOK, buckets)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	loc := s.opts.Config.Location()
	writeJSON(w, http.StatusOK, board.WeeklyStats(s.opts.Roster.Candidates(), s.opts.Now(), loc))
}

// handleBoardPage renders the weekly board as a static HTML page. The root
// element carries data-ready="true" so a headless browser knows when to
// take the snapshot.
func (s *Server) handleBoardPage(w http.ResponseWriter, _ *http.Request) {
	buckets, loc := s.buckets()
	page := boardPage{
		Title:    "InterviewPro",
		Now:      s.opts.Now().In(loc),
		Location: loc,
		Buckets:  buckets,
		Stats:    board.WeeklyStats(s.opts.Roster.Candidates(), s.opts.Now(), loc),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := boardTmpl.Execute(w, page); err != nil {
		appLog.Error("web: render board failed", err)
	}
}

func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	name := fmt.Sprintf("interviewpro-%s.xlsx", s.opts.Now().In(s.opts.Config.Location()).Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, name))
	if err := export.Write(w, s.opts.Roster.Candidates(), s.opts.Config.Location()); err != nil {
		appLog.Error("web: export failed", err)
	}
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if s.opts.Syncer == nil {
		writeError(w, http.StatusServiceUnavailable, "calendar sync is not configured")
		return
	}
	res, err := s.opts.Syncer.Sync(r.Context())
	if err != nil {
		appLog.Error("web: sync failed", err)
		writeError(w, http.StatusInternalServerError, "sync failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, _ *http.Request) {
	if s.opts.Syncer == nil {
		writeError(w, http.StatusServiceUnavailable, "calendar sync is not configured")
		return
	}
	res, ok := s.opts.Syncer.Last()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

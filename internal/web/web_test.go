package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interviewpro/internal/calendar"
	"interviewpro/internal/calsync"
	"interviewpro/internal/config"
	"interviewpro/internal/model"
	"interviewpro/internal/roster"
	"interviewpro/internal/session"
	"interviewpro/internal/store"
)

var testNow = time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)

type fakeAuth struct {
	authed   bool
	state    string
	code     string
	loggedIn int
}

func (f *fakeAuth) IsAuthenticated() bool { return f.authed }

func (f *fakeAuth) AuthCodeURL(state string) (string, error) {
	f.state = state
	return "https://accounts.example.com/auth?state=" + url.QueryEscape(state), nil
}

func (f *fakeAuth) Exchange(_ context.Context, code string) error {
	f.code = code
	f.authed = true
	f.loggedIn++
	return nil
}

func (f *fakeAuth) Logout() error {
	f.authed = false
	return nil
}

type fakeSummarizer struct{ out string }

func (f fakeSummarizer) Summarize(context.Context, string) (string, error) { return f.out, nil }

type harness struct {
	srv    *Server
	h      http.Handler
	roster *roster.Roster
	auth   *fakeAuth
}

func newHarness(t *testing.T, mutate func(*config.Config)) *harness {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemoryStore()

	seq := 0
	r, err := roster.Load(ctx, st, roster.Options{
		Location: time.UTC,
		Now:      func() time.Time { return testNow },
		NewID: func() string {
			seq++
			return fmt.Sprintf("cal-%d", seq)
		},
	})
	require.NoError(t, err)

	events := []model.ExternalEvent{
		{ID: "ev1", Summary: "홍길동 1차 면접", Start: "2024-06-12T14:00:00Z"},
		{ID: "ev2", Summary: "팀 회식", Start: "2024-06-13T10:00:00Z"},
	}
	syncer, err := calsync.New(calsync.Options{
		Source: calendar.SourceFunc(func(context.Context, time.Time, time.Time) ([]model.ExternalEvent, error) {
			return events, nil
		}),
		Roster:   r,
		Location: time.UTC,
		Now:      func() time.Time { return testNow },
	})
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	cfg.Locale = "ko"
	if mutate != nil {
		mutate(cfg)
	}

	fa := &fakeAuth{}
	srv := NewServer(Options{
		Config:     cfg,
		Roster:     r,
		Syncer:     syncer,
		Auth:       fa,
		Bank:       session.NewBank(st),
		Drafts:     session.NewDrafts(st),
		Summarizer: fakeSummarizer{out: "통합 요약"},
		Now:        func() time.Time { return testNow },
	})
	return &harness{srv: srv, h: srv.Handler(), roster: r, auth: fa}
}

func (h *harness) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	h := newHarness(t, nil)
	rec := h.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestBasicAuthExemptsHealth(t *testing.T) {
	h := newHarness(t, func(c *config.Config) {
		c.BasicAuth = &config.BasicAuthConfig{Username: "admin", Password: "pw"}
	})

	assert.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/health", "").Code)

	rec := h.do(t, http.MethodGet, "/api/candidates", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Basic")

	req := httptest.NewRequest(http.MethodGet, "/api/candidates", nil)
	req.SetBasicAuth("admin", "pw")
	rec = httptest.NewRecorder()
	h.h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCandidateSessionFlow(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.do(t, http.MethodPost, "/api/candidates", `{"name":"김철수","role":"Backend Developer","scheduledTime":1718200800000}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode[map[string]string](t, rec)["id"]
	require.NotEmpty(t, id)

	list := decode[[]candidateDTO](t, h.do(t, http.MethodGet, "/api/candidates", ""))
	require.Len(t, list, 1)
	assert.Equal(t, "서류 검토 중", list[0].LatestStage)
	assert.NotNil(t, list[0].Notes)

	assert.Equal(t, http.StatusNoContent, h.do(t, http.MethodPut, "/api/candidates/"+id+"/role", `{"role":"Product Manager"}`).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodPut, "/api/candidates/"+id+"/role", `{"role":"Astronaut"}`).Code)

	rec = h.do(t, http.MethodPost, "/api/candidates/"+id+"/start", "")
	require.Equal(t, http.StatusOK, rec.Code)
	started := decode[session.Draft](t, rec)
	assert.Equal(t, model.StageFirstTechnical, started.SelectedStage)
	c, err := h.roster.Get(id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, c.Status)

	assert.Equal(t, http.StatusNoContent, h.do(t, http.MethodGet, "/api/candidates/"+id+"/draft", "").Code)
	rec = h.do(t, http.MethodPut, "/api/candidates/"+id+"/draft",
		`{"selectedQuestions":[{"questionId":"g1","questionText":"동기?","answerText":"성장"}],"overallPros":"명확함","selectedStage":"2차 컬쳐 인터뷰"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	draft := decode[session.Draft](t, h.do(t, http.MethodGet, "/api/candidates/"+id+"/draft", ""))
	assert.Equal(t, "명확함", draft.OverallPros)
	assert.Equal(t, testNow.UnixMilli(), draft.Timestamp)

	started = decode[session.Draft](t, h.do(t, http.MethodPost, "/api/candidates/"+id+"/start", ""))
	assert.Equal(t, model.StageSecondCulture, started.SelectedStage, "draft restored on start")

	assert.Equal(t, http.StatusBadRequest,
		h.do(t, http.MethodPost, "/api/candidates/"+id+"/notes", `{"interviewer":{"name":"김면접"},"answers":[]}`).Code)
	assert.Equal(t, http.StatusBadRequest,
		h.do(t, http.MethodPost, "/api/candidates/"+id+"/notes", `{"answers":[{"questionId":"g1","questionText":"동기?"}]}`).Code,
		"interviewer name is required")

	rec = h.do(t, http.MethodPost, "/api/candidates/"+id+"/notes",
		`{"interviewer":{"name":"김면접","department":"Platform"},"stage":"최종 인터뷰","answers":[{"questionId":"g1","questionText":"동기?","answerText":"성장"}],"overallPros":"좋음","overallCons":"없음"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	note := decode[model.InterviewNote](t, rec)
	assert.Equal(t, id, note.CandidateID)
	assert.Equal(t, model.StageFinal, note.Stage)

	got := decode[candidateDTO](t, h.do(t, http.MethodGet, "/api/candidates/"+id, ""))
	assert.Equal(t, model.StatusCompleted, got.Status)
	assert.Len(t, got.Notes, 1)
	assert.Equal(t, string(model.StageFinal), got.LatestStage)
	assert.Equal(t, http.StatusNoContent, h.do(t, http.MethodGet, "/api/candidates/"+id+"/draft", "").Code, "draft cleared")

	summary := decode[map[string]any](t, h.do(t, http.MethodGet, "/api/candidates/"+id+"/summary", ""))
	assert.Equal(t, true, summary["available"])
	assert.Equal(t, "통합 요약", summary["summary"])

	assert.Equal(t, http.StatusNoContent, h.do(t, http.MethodDelete, "/api/candidates/"+id, "").Code)
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodGet, "/api/candidates/"+id, "").Code)
}

func TestCandidateValidation(t *testing.T) {
	h := newHarness(t, nil)
	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodPost, "/api/candidates", `{"name":"  "}`).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodPost, "/api/candidates", `{"name":"x","role":"Astronaut"}`).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodPost, "/api/candidates", `{"name":"x","extra":1}`).Code)
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodPost, "/api/candidates/missing/start", "").Code)
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodPut, "/api/candidates/missing/status", `{"status":"no_show"}`).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodGet, "/api/persona?role=nope", "").Code)
}

func TestSyncThenBoard(t *testing.T) {
	h := newHarness(t, nil)

	assert.Equal(t, http.StatusNoContent, h.do(t, http.MethodGet, "/api/sync", "").Code)

	rec := h.do(t, http.MethodPost, "/api/sync", "")
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[calsync.Result](t, rec)
	assert.Equal(t, 2, res.Fetched)
	assert.Equal(t, 1, res.Matched)
	assert.Equal(t, 1, res.Created)

	last := decode[calsync.Result](t, h.do(t, http.MethodGet, "/api/sync", ""))
	assert.Equal(t, 1, last.Created)

	buckets := decode[[]map[string]any](t, h.do(t, http.MethodGet, "/api/board", ""))
	require.Len(t, buckets, 1)
	assert.Equal(t, "이번 주", buckets[0]["label"])

	rec = h.do(t, http.MethodGet, "/board", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-ready="true"`)
	assert.Contains(t, rec.Body.String(), "홍길동")
	assert.Contains(t, rec.Body.String(), "이번 주")

	stats := decode[map[string]any](t, h.do(t, http.MethodGet, "/api/stats", ""))
	assert.EqualValues(t, 0, stats["thisWeekTotal"])

	roles := decode[[]map[string]any](t, h.do(t, http.MethodGet, "/api/role-stats", ""))
	assert.Len(t, roles, len(model.Roles))
}

func TestQuestionsCRUD(t *testing.T) {
	h := newHarness(t, nil)

	all := decode[questionsResponse](t, h.do(t, http.MethodGet, "/api/questions", ""))
	assert.Len(t, all.Questions, len(session.DefaultPool))
	assert.Contains(t, all.Categories, session.CategoryAll)

	rec := h.do(t, http.MethodPost, "/api/questions", `{"category":"Backend","text":"트랜잭션 격리 수준?"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	q := decode[model.Question](t, rec)
	assert.True(t, strings.HasPrefix(q.ID, session.CustomPrefix))

	backend := decode[questionsResponse](t, h.do(t, http.MethodGet, "/api/questions?category=Backend", ""))
	require.Len(t, backend.Questions, 1)

	assert.Equal(t, http.StatusNoContent, h.do(t, http.MethodPut, "/api/questions/"+q.ID, `{"text":"격리 수준?"}`).Code)
	assert.Equal(t, http.StatusNoContent, h.do(t, http.MethodDelete, "/api/questions/"+q.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodDelete, "/api/questions/"+q.ID, "").Code)
	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodPost, "/api/questions", `{"category":"","text":"x"}`).Code)

	assert.Equal(t, http.StatusNoContent, h.do(t, http.MethodPost, "/api/questions/reset", "").Code)
	all = decode[questionsResponse](t, h.do(t, http.MethodGet, "/api/questions", ""))
	assert.Len(t, all.Questions, len(session.DefaultPool))
}

func TestLoginFlow(t *testing.T) {
	h := newHarness(t, nil)

	st := decode[authStatus](t, h.do(t, http.MethodGet, "/api/auth/status", ""))
	assert.True(t, st.LoginRequired)
	assert.False(t, st.Authenticated)

	rec := h.do(t, http.MethodGet, "/auth/login", "")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), url.QueryEscape(h.auth.state))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	bad := httptest.NewRequest(http.MethodGet, "/auth/callback?state=forged&code=abc", nil)
	bad.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.h.ServeHTTP(rec, bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, h.auth.loggedIn)

	good := httptest.NewRequest(http.MethodGet, "/auth/callback?state="+url.QueryEscape(h.auth.state)+"&code=abc", nil)
	good.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.h.ServeHTTP(rec, good)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "abc", h.auth.code)

	st = decode[authStatus](t, h.do(t, http.MethodGet, "/api/auth/status", ""))
	assert.True(t, st.Authenticated)

	assert.Equal(t, http.StatusNoContent, h.do(t, http.MethodPost, "/api/auth/logout", "").Code)
	assert.False(t, h.auth.authed)
}

func TestExport(t *testing.T) {
	h := newHarness(t, nil)
	rec := h.do(t, http.MethodGet, "/api/export", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "interviewpro-20240612.xlsx")
	assert.NotZero(t, rec.Body.Len())
}

func TestRootRedirectsToBoard(t *testing.T) {
	h := newHarness(t, nil)
	rec := h.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/board", rec.Header().Get("Location"))
}

package insight

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interviewpro/internal/model"
)

type fakeSummarizer struct {
	prompts []string
	out     string
	err     error
}

func (f *fakeSummarizer) Summarize(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.out, f.err
}

func candidateWithNotes() model.Candidate {
	return model.Candidate{
		ID:   "cal-1",
		Name: "홍길동",
		Role: model.RoleBackend,
		Notes: []model.InterviewNote{
			{
				ID:          "n-1",
				Interviewer: model.Interviewer{Name: "김면접", Department: "Platform"},
				Answers:     []model.Answer{{QuestionID: "sw1", QuestionText: "기술적 난제?", AnswerText: "캐시 계층 재설계"}},
				OverallPros: "문제 정의가 명확함",
				OverallCons: "협업 경험 부족",
				Timestamp:   2000,
				Stage:       model.StageSecondCulture,
			},
			{
				ID:          "n-0",
				Interviewer: model.Interviewer{Name: "이면접"},
				Answers:     []model.Answer{{QuestionID: "g1", QuestionText: "동기?", AnswerText: "성장"}},
				Timestamp:   1000,
				Stage:       model.StageFirstTechnical,
			},
		},
	}
}

func TestConsolidatedSummary(t *testing.T) {
	f := &fakeSummarizer{out: "1. [공통 긍정 신호] ..."}
	out, ok := ConsolidatedSummary(context.Background(), f, candidateWithNotes())
	require.True(t, ok)
	assert.Equal(t, f.out, out)

	require.Len(t, f.prompts, 1)
	p := f.prompts[0]
	assert.Contains(t, p, "후보자 홍길동")
	assert.Contains(t, p, "[면접관 1: 김면접]")
	assert.Contains(t, p, "[면접관 2: 이면접]")
	assert.Contains(t, p, "문제 정의가 명확함")
	assert.Contains(t, p, "캐시 계층 재설계")
}

func TestConsolidatedSummaryNoNotesOrError(t *testing.T) {
	f := &fakeSummarizer{}
	_, ok := ConsolidatedSummary(context.Background(), f, model.Candidate{ID: "x"})
	assert.False(t, ok)
	assert.Empty(t, f.prompts)

	out, ok := ConsolidatedSummary(context.Background(), &fakeSummarizer{err: errors.New("quota")}, candidateWithNotes())
	assert.True(t, ok)
	assert.Equal(t, SummaryFailed, out)
}

func TestJobPersona(t *testing.T) {
	cands := []model.Candidate{
		candidateWithNotes(),
		{ID: "b", Role: model.RoleBackend},
		{ID: "c", Role: model.RoleDesigner, Notes: candidateWithNotes().Notes},
	}

	f := &fakeSummarizer{out: "persona"}
	assert.Equal(t, "persona", JobPersona(context.Background(), f, model.RoleBackend, cands))
	require.Len(t, f.prompts, 1)
	assert.Contains(t, f.prompts[0], "Backend Developer 직무")
	assert.Contains(t, f.prompts[0], "김면접 (Platform)")
	assert.NotContains(t, f.prompts[0], "=== NEXT CANDIDATE ===")

	assert.Equal(t, PersonaNoData, JobPersona(context.Background(), f, model.RoleProductManager, cands))
	assert.Equal(t, PersonaFailed, JobPersona(context.Background(), &fakeSummarizer{err: errors.New("x")}, model.RoleBackend, cands))
	assert.Equal(t, PersonaEmpty, JobPersona(context.Background(), &fakeSummarizer{out: " "}, model.RoleBackend, cands))
	assert.Equal(t, PersonaFailed, JobPersona(context.Background(), Unavailable{}, model.RoleBackend, cands))
}

func TestRoleStats(t *testing.T) {
	cands := []model.Candidate{
		candidateWithNotes(),
		{ID: "b", Role: model.RoleBackend},
		{ID: "c", Role: model.RoleDesigner, Notes: candidateWithNotes().Notes},
	}
	stats := RoleStats(cands)
	require.Len(t, stats, len(model.Roles))
	got := map[model.JobRole]int{}
	for _, s := range stats {
		got[s.Role] = s.Count
	}
	assert.Equal(t, 1, got[model.RoleBackend])
	assert.Equal(t, 1, got[model.RoleDesigner])
	assert.Equal(t, 0, got[model.RoleFrontend])
}

func TestLatestStage(t *testing.T) {
	assert.Equal(t, StageUnderReview, LatestStage(model.Candidate{}))
	assert.Equal(t, string(model.StageSecondCulture), LatestStage(candidateWithNotes()))
}

func TestExtractTextFromResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("1. "), genai.Text("요약")}},
		}},
	}
	text, err := extractTextFromResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, "1. 요약", text)

	_, err = extractTextFromResponse(&genai.GenerateContentResponse{})
	assert.Error(t, err)
	_, err = extractTextFromResponse(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}})
	assert.Error(t, err)
}

func TestNewGeminiRequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "", "")
	assert.Error(t, err)
}

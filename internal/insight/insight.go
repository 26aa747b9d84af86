// Package insight builds the AI views over finished interviews: the
// consolidated summary of one candidate and the persona of a job role.
package insight

import (
	"context"
	"fmt"
	"sort"
	"strings"

	appLog "interviewpro/internal/log"
	"interviewpro/internal/model"
)

// Messages shown instead of a model answer.
const (
	SummaryFailed    = "요약 중 오류가 발생했습니다."
	PersonaFailed    = "분석 중 오류가 발생했습니다."
	PersonaNoData    = "분석할 데이터가 부족합니다. 최소 1개 이상의 인터뷰 완료 데이터가 필요합니다."
	PersonaEmpty     = "AI 분석 결과를 생성할 수 없습니다."
	StageUnderReview = "서류 검토 중"
)

// Summarizer turns a prompt into text.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// ConsolidatedSummary asks the summarizer to merge all interviewers'
// pros and cons for c. ok is false when c has no notes. A summarizer error
// is logged and replaced by SummaryFailed.
func ConsolidatedSummary(ctx context.Context, s Summarizer, c model.Candidate) (summary string, ok bool) {
	if len(c.Notes) == 0 {
		return "", false
	}
	out, err := s.Summarize(ctx, consolidationPrompt(c))
	if err != nil {
		appLog.Error("insight: consolidated summary failed", err, "candidate", c.ID)
		return SummaryFailed, true
	}
	return out, true
}

func consolidationPrompt(c model.Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "후보자 %s에 대해 면접관들이 남긴 장단점 기록을 통합 요약해주세요.\n", c.Name)
	b.WriteString("반드시 다음 2가지 섹션으로 한국어 답변하세요.\n\n")
	b.WriteString("1. [공통 긍정 신호]: 면접관들이 공통적으로 높게 평가한 부분.\n")
	b.WriteString("2. [추가 검증 필요 사항]: 면접관들이 공통적으로 우려(Cons)하거나 의견이 갈리는 부분.\n\n")
	b.WriteString("데이터:\n")
	for i, n := range c.Notes {
		answers := make([]string, 0, len(n.Answers))
		for _, a := range n.Answers {
			answers = append(answers, a.AnswerText)
		}
		fmt.Fprintf(&b, "\n[면접관 %d: %s]\n", i+1, n.Interviewer.Name)
		fmt.Fprintf(&b, "좋았던 점(Pros): %s\n", n.OverallPros)
		fmt.Fprintf(&b, "아쉬웠던 점(Cons): %s\n", n.OverallCons)
		fmt.Fprintf(&b, "상세 답변 요약: %s\n", strings.Join(answers, ", "))
	}
	return b.String()
}

// JobPersona asks the summarizer for the ideal-hire persona of role, based
// on every interviewed candidate for it.
func JobPersona(ctx context.Context, s Summarizer, role model.JobRole, candidates []model.Candidate) string {
	var relevant []model.Candidate
	for _, c := range candidates {
		if c.Role == role && len(c.Notes) > 0 {
			relevant = append(relevant, c)
		}
	}
	if len(relevant) == 0 {
		return PersonaNoData
	}

	out, err := s.Summarize(ctx, personaPrompt(role, relevant))
	if err != nil {
		appLog.Error("insight: persona analysis failed", err, "role", string(role))
		return PersonaFailed
	}
	if strings.TrimSpace(out) == "" {
		return PersonaEmpty
	}
	return out
}

func personaPrompt(role model.JobRole, cs []model.Candidate) string {
	blocks := make([]string, 0, len(cs))
	for _, c := range cs {
		notes := make([]string, 0, len(c.Notes))
		for _, n := range c.Notes {
			var nb strings.Builder
			fmt.Fprintf(&nb, "interviewer: %s (%s)\n", n.Interviewer.Name, n.Interviewer.Department)
			fmt.Fprintf(&nb, "pros: %s\ncons: %s\nanswers:\n", n.OverallPros, n.OverallCons)
			for _, a := range n.Answers {
				fmt.Fprintf(&nb, "%s: %s\n", a.QuestionText, a.AnswerText)
			}
			notes = append(notes, nb.String())
		}
		blocks = append(blocks, strings.Join(notes, "\n---\n"))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "당신은 전문 HR 컨설턴트입니다. 다음은 %s 직무 후보자들의 정성적인 인터뷰 데이터(좋았던 점, 아쉬웠던 점 포함)입니다.\n", role)
	b.WriteString("이 데이터를 바탕으로 우리 조직에 가장 적합한 '직무 페르소나'를 정의해주세요.\n\n")
	b.WriteString("포함내용:\n")
	b.WriteString("1. 핵심 역량 분석 (면접관들이 공통적으로 주목한 강점)\n")
	b.WriteString("2. 주요 답변 패턴 및 합격자의 핵심 키워드\n")
	b.WriteString("3. 채용 시 주의해야 할 공통적인 리스크(Cons) 패턴\n")
	b.WriteString("4. 향후 면접에서 보완해야 할 질문 가이드\n\n")
	b.WriteString("데이터:\n")
	b.WriteString(strings.Join(blocks, "\n\n=== NEXT CANDIDATE ===\n\n"))
	return b.String()
}

// RoleStat is the number of interviewed candidates for a role.
type RoleStat struct {
	Role  model.JobRole `json:"role"`
	Count int           `json:"count"`
}

// RoleStats counts candidates with at least one note, per assignable role.
func RoleStats(candidates []model.Candidate) []RoleStat {
	out := make([]RoleStat, 0, len(model.Roles))
	for _, r := range model.Roles {
		n := 0
		for _, c := range candidates {
			if c.Role == r && len(c.Notes) > 0 {
				n++
			}
		}
		out = append(out, RoleStat{Role: r, Count: n})
	}
	return out
}

// LatestStage is the stage of the newest note, or StageUnderReview.
func LatestStage(c model.Candidate) string {
	if len(c.Notes) == 0 {
		return StageUnderReview
	}
	notes := append([]model.InterviewNote(nil), c.Notes...)
	sort.SliceStable(notes, func(i, j int) bool { return notes[i].Timestamp > notes[j].Timestamp })
	return string(notes[0].Stage)
}

package intake

import (
	"regexp"
	"strings"

	"interviewpro/internal/model"
)

// Title is the result of parsing an event title.
type Title struct {
	Stage         model.Stage
	CandidateName string
}

type stagePattern struct {
	stage   model.Stage
	bracket *regexp.Regexp
	phrase  *regexp.Regexp
}

// Words that may follow a stage keyword and belong to the same marker,
// e.g. "1차 역량 인터뷰".
const markerTail = `(?:\s*(?:면접|인터뷰|\binterview\b|\bround\b|라운드|역량|기술|컬[쳐처]|\bculture\b|\btechnical\b))*`

func newStagePattern(stage model.Stage, keyword string) stagePattern {
	return stagePattern{
		stage: stage,
		bracket: regexp.MustCompile(`(?i)\[[^\]]*(?:` + keyword + `)[^\]]*\]` +
			`|\([^)]*(?:` + keyword + `)[^)]*\)` +
			`|【[^】]*(?:` + keyword + `)[^】]*】`),
		phrase: regexp.MustCompile(`(?i)(?:` + keyword + `)` + markerTail),
	}
}

// stagePatterns are tried in order and the first match wins. Round digits
// need a word boundary on the left so "12차" is not read as "2차".
var stagePatterns = []stagePattern{
	newStagePattern(model.StageFirstTechnical, `\b1\s*(?:차|st\b)|첫\s*번째|\bfirst\b|\btechnical\b|기술|역량`),
	newStagePattern(model.StageSecondCulture, `\b2\s*(?:차|nd\b)|두\s*번째|\bsecond\b|\bculture\b|컬[쳐처]`),
	newStagePattern(model.StageFinal, `최종|\bfinal\b`),
	newStagePattern(model.StageCoffeeChat, `커피\s*챗|\bcoffee\s*chat\b`),
}

var (
	genericNouns = regexp.MustCompile(`(?i)면접|인터뷰|\binterview\b|후보자|\bcandidate\b|채용|\brecruiting\b`)
	bracketSpans = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)|【[^】]*】`)
)

const edgePunct = " -–:|/·,._"

// ParseTitle extracts the interview stage and the candidate's display name
// from a calendar event title. Titles without a stage marker default to
// the first technical round. The returned name may be empty when the
// title consisted only of markers.
func ParseTitle(title string) Title {
	out := Title{Stage: model.StageFirstTechnical}
	rest := title

	for _, p := range stagePatterns {
		if loc := p.bracket.FindStringIndex(rest); loc != nil {
			out.Stage = p.stage
			rest = rest[:loc[0]] + " " + rest[loc[1]:]
			break
		}
		if loc := p.phrase.FindStringIndex(rest); loc != nil {
			out.Stage = p.stage
			rest = rest[:loc[0]] + " " + rest[loc[1]:]
			break
		}
	}

	rest = genericNouns.ReplaceAllString(rest, " ")
	rest = bracketSpans.ReplaceAllString(rest, " ")
	rest = strings.Join(strings.Fields(rest), " ")
	out.CandidateName = strings.Trim(rest, edgePunct)
	return out
}

// NameOrTitle returns the parsed candidate name, or the trimmed raw title
// when parsing left nothing behind.
func (t Title) NameOrTitle(raw string) string {
	if t.CandidateName != "" {
		return t.CandidateName
	}
	return strings.TrimSpace(raw)
}

// Package intake turns raw calendar events into interview candidates:
// it keeps only interview-related events and extracts stage and name
// from the event title.
package intake

import (
	"strings"

	"interviewpro/internal/model"
)

// DefaultKeywords are matched against title and description.
var DefaultKeywords = []string{"면접", "인터뷰", "interview", "채용", "후보자", "candidate"}

// Filter keeps interview-related events.
type Filter struct {
	keywords []string
}

// NewFilter builds a Filter. An empty keyword list uses DefaultKeywords.
func NewFilter(keywords []string) *Filter {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	folded := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			folded = append(folded, k)
		}
	}
	return &Filter{keywords: folded}
}

// Match returns the events whose summary or description contains at
// least one keyword, in input order.
func (f *Filter) Match(events []model.ExternalEvent) []model.ExternalEvent {
	out := make([]model.ExternalEvent, 0, len(events))
	for _, ev := range events {
		if f.Matches(ev) {
			out = append(out, ev)
		}
	}
	return out
}

func (f *Filter) Matches(ev model.ExternalEvent) bool {
	text := strings.ToLower(ev.Summary + " " + ev.Description)
	for _, k := range f.keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

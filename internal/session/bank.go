// Package session records a live interview: the question bank, per
// candidate drafts and the note produced when a session finishes.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	appLog "interviewpro/internal/log"
	"interviewpro/internal/model"
	"interviewpro/internal/store"
)

// QuestionsKey is the store key of the customized question bank.
const QuestionsKey = "custom_interview_questions"

// CategoryAll selects every category in Filter.
const CategoryAll = "All"

// CustomPrefix marks question ids created by users. Custom questions may
// appear more than once in a session.
const CustomPrefix = "custom"

var ErrQuestionNotFound = errors.New("session: question not found")

// Bank is the editable question pool. Until the first edit it serves
// DefaultPool.
type Bank struct {
	mu    sync.Mutex
	store store.Store
	newID func() string
}

func NewBank(st store.Store) *Bank {
	return &Bank{store: st, newID: func() string { return CustomPrefix + "-" + uuid.NewString() }}
}

// List returns the current pool in stored order.
func (b *Bank) List(ctx context.Context) ([]model.Question, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.load(ctx)
}

func (b *Bank) load(ctx context.Context) ([]model.Question, error) {
	raw, ok, err := b.store.Get(ctx, QuestionsKey)
	if err != nil {
		return nil, fmt.Errorf("session: load questions: %w", err)
	}
	if !ok {
		return defaultPool(), nil
	}
	var qs []model.Question
	if err := json.Unmarshal([]byte(raw), &qs); err != nil {
		appLog.Error("session: stored question bank is malformed; using defaults", err)
		return defaultPool(), nil
	}
	return qs, nil
}

func (b *Bank) save(ctx context.Context, qs []model.Question) error {
	data, err := json.Marshal(qs)
	if err != nil {
		return fmt.Errorf("session: encode questions: %w", err)
	}
	if err := b.store.Set(ctx, QuestionsKey, string(data)); err != nil {
		return fmt.Errorf("session: save questions: %w", err)
	}
	return nil
}

// Add appends a custom question.
func (b *Bank) Add(ctx context.Context, category, text string) (model.Question, error) {
	q := model.Question{ID: b.newID(), Category: strings.TrimSpace(category), Text: strings.TrimSpace(text)}
	if err := q.Validate(); err != nil {
		return model.Question{}, fmt.Errorf("session: invalid question: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	qs, err := b.load(ctx)
	if err != nil {
		return model.Question{}, err
	}
	if err := b.save(ctx, append(qs, q)); err != nil {
		return model.Question{}, err
	}
	return q, nil
}

// Edit replaces the text of a question.
func (b *Bank) Edit(ctx context.Context, id, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New("session: question text is required")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	qs, err := b.load(ctx)
	if err != nil {
		return err
	}
	for i := range qs {
		if qs[i].ID == id {
			qs[i].Text = text
			return b.save(ctx, qs)
		}
	}
	return ErrQuestionNotFound
}

// Delete removes a question.
func (b *Bank) Delete(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	qs, err := b.load(ctx)
	if err != nil {
		return err
	}
	for i := range qs {
		if qs[i].ID == id {
			return b.save(ctx, append(qs[:i], qs[i+1:]...))
		}
	}
	return ErrQuestionNotFound
}

// Reset restores DefaultPool.
func (b *Bank) Reset(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.save(ctx, defaultPool())
}

// Categories returns CategoryAll followed by each category in order of
// first appearance.
func Categories(qs []model.Question) []string {
	out := []string{CategoryAll}
	seen := map[string]bool{}
	for _, q := range qs {
		if !seen[q.Category] {
			seen[q.Category] = true
			out = append(out, q.Category)
		}
	}
	return out
}

// Filter keeps questions of one category; CategoryAll or "" keeps all.
func Filter(qs []model.Question, category string) []model.Question {
	if category == "" || category == CategoryAll {
		return qs
	}
	out := make([]model.Question, 0, len(qs))
	for _, q := range qs {
		if q.Category == category {
			out = append(out, q)
		}
	}
	return out
}

package generator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxwell142857/cs5500-group6/internal/llm"
	"github.com/maxwell142857/cs5500-group6/internal/quota"
	"github.com/maxwell142857/cs5500-group6/internal/rotation"
)

// scriptedProvider returns its replies in order, then repeats the last one.
type scriptedProvider struct {
	mu      sync.Mutex
	replies []string
	err     error
	prompts []string
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts = append(p.prompts, req.Messages[0].Content)
	if p.err != nil {
		return nil, p.err
	}
	reply := p.replies[0]
	if len(p.replies) > 1 {
		p.replies = p.replies[1:]
	}
	return &llm.CompletionResponse{Content: reply, Model: req.Model}, nil
}

func newGenerator(t *testing.T, providers map[string]llm.Provider) (*Generator, *quota.Tracker) {
	t.Helper()
	var limits []quota.Limit
	var models []string
	for _, m := range []string{"m1", "m2"} {
		if _, ok := providers[m]; ok {
			limits = append(limits, quota.Limit{Model: m, RPM: 10, RPD: 100})
			models = append(models, m)
		}
	}
	tr := quota.New(limits)
	s := rotation.New(tr, models, rotation.Config{
		CallTimeout:     time.Second,
		FailureCooldown: time.Minute,
		QuotaCooldown:   time.Minute,
	})
	return New(s, providers, 0.7), tr
}

func TestGenerateQuestion(t *testing.T) {
	p := &scriptedProvider{replies: []string{"**Does it live in water?**"}}
	g, tr := newGenerator(t, map[string]llm.Provider{"m1": p})

	q, err := g.GenerateQuestion(context.Background(), "animal", nil)
	require.NoError(t, err)
	assert.Equal(t, "Does it live in water?", q)
	assert.Contains(t, p.prompts[0], "Ask a single yes/no question to identify or to guess a animal.")
	assert.Equal(t, 1, tr.Status()[0].MinuteUsed)
}

func TestGenerateQuestionRotatesOnInvalidOutput(t *testing.T) {
	bad := &scriptedProvider{replies: []string{"Watch this video at www.example.com"}}
	good := &scriptedProvider{replies: []string{"Is it a pet?"}}
	g, tr := newGenerator(t, map[string]llm.Provider{"m1": bad, "m2": good})

	q, err := g.GenerateQuestion(context.Background(), "animal", []Turn{{Question: "Is it big?", Answer: "no"}})
	require.NoError(t, err)
	assert.Equal(t, "Is it a pet?", q)

	// The invalid reply still consumed quota on m1.
	st := tr.Status()
	assert.Equal(t, 1, st[0].MinuteUsed)
	assert.Equal(t, 1, st[1].MinuteUsed)
	assert.Contains(t, good.prompts[0], "Q: Is it big? A: no.")
}

func TestGenerateQuestionAllFail(t *testing.T) {
	p := &scriptedProvider{err: &llm.StatusError{Provider: "gemini", StatusCode: 429}}
	g, _ := newGenerator(t, map[string]llm.Provider{"m1": p})

	_, err := g.GenerateQuestion(context.Background(), "animal", nil)
	assert.ErrorIs(t, err, rotation.ErrAllFailed)

	// m1 is now cooling down, so the next call finds nothing to try.
	_, err = g.GenerateQuestion(context.Background(), "animal", nil)
	assert.ErrorIs(t, err, rotation.ErrExhausted)
}

func TestGenerateGuess(t *testing.T) {
	p := &scriptedProvider{replies: []string{"golden retriever.\nIt is a friendly dog."}}
	g, _ := newGenerator(t, map[string]llm.Provider{"m1": p})

	guess, err := g.GenerateGuess(context.Background(), "animal", []Turn{{Question: "Is it a pet?", Answer: "yes"}})
	require.NoError(t, err)
	assert.Equal(t, "Golden retriever", guess)
	assert.Contains(t, p.prompts[0], "What specific animal is it? Just Name the exact animal:")
}

func TestGenerateGuessMissingProvider(t *testing.T) {
	tr := quota.New([]quota.Limit{{Model: "m1", RPM: 1, RPD: 1}})
	s := rotation.New(tr, []string{"m1"}, rotation.Config{CallTimeout: time.Second})
	g := New(s, map[string]llm.Provider{}, 0)

	_, err := g.GenerateGuess(context.Background(), "animal", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, rotation.ErrAllFailed))
}

func TestValidQuestion(t *testing.T) {
	tests := []struct {
		q    string
		want bool
	}{
		{"Is it a mammal?", true},
		{"Could it fly?", true},
		{"Is it", false},
		{"What is it?", false},
		{"Is it on youtube?", false},
		{"Does it have a .com domain?", false},
		{"Is?", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidQuestion(tt.q), tt.q)
	}
}

func TestCleanQuestion(t *testing.T) {
	assert.Equal(t, "Is it red?", CleanQuestion("Sure!\n\"Is it red?\"\n"))
	assert.Equal(t, "Is it red", CleanQuestion("  Is it red  "))
}

func TestCleanGuess(t *testing.T) {
	assert.Equal(t, "Pizza", CleanGuess("pizza."))
	assert.Equal(t, "Éclair", CleanGuess("*éclair*"))
	assert.Equal(t, "", CleanGuess("   "))
}

func TestQuestionPromptWithHistory(t *testing.T) {
	p := QuestionPrompt("movie", []Turn{{"Is it animated?", "yes"}, {"Is it recent?", "unknown"}})
	assert.Equal(t,
		"Based on these previous questions and answers: Q: Is it animated? A: yes. Q: Is it recent? A: unknown.  Ask a new yes/no question to identify or to guess a movie. "+questionRule,
		p)
}

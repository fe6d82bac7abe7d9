// Package generator produces questions and guesses with an external
// language model, routing every call through the rotation scheduler.
package generator

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/maxwell142857/cs5500-group6/internal/llm"
)

// maxGuessLen rejects rambling answers to the guess prompt.
const maxGuessLen = 100

// Scheduler runs a call against the next available model.
type Scheduler interface {
	Do(ctx context.Context, call func(ctx context.Context, model string) error) (string, error)
}

// Generator asks models for questions and guesses.
type Generator struct {
	scheduler   Scheduler
	providers   map[string]llm.Provider
	temperature float64
}

// New creates a generator. providers maps each scheduled model name to
// the provider that serves it.
func New(s Scheduler, providers map[string]llm.Provider, temperature float64) *Generator {
	return &Generator{scheduler: s, providers: providers, temperature: temperature}
}

// GenerateQuestion returns a validated yes/no question.
func (g *Generator) GenerateQuestion(ctx context.Context, domain string, turns []Turn) (string, error) {
	prompt := QuestionPrompt(domain, turns)
	var question string

	model, err := g.scheduler.Do(ctx, func(ctx context.Context, model string) error {
		text, err := g.complete(ctx, model, prompt)
		if err != nil {
			return err
		}
		q := CleanQuestion(text)
		if !ValidQuestion(q) {
			return fmt.Errorf("%s produced %q: not a yes/no question: %w", model, q, llm.ErrUnusableResponse)
		}
		question = q
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("generating question: %w", err)
	}

	log.Debug().Str("model", model).Str("domain", domain).Str("question", question).Msg("generated question")
	return question, nil
}

// GenerateGuess returns the model's best guess, capitalized.
func (g *Generator) GenerateGuess(ctx context.Context, domain string, turns []Turn) (string, error) {
	prompt := GuessPrompt(domain, turns)
	var guess string

	model, err := g.scheduler.Do(ctx, func(ctx context.Context, model string) error {
		text, err := g.complete(ctx, model, prompt)
		if err != nil {
			return err
		}
		name := CleanGuess(text)
		if name == "" || len(name) > maxGuessLen {
			return fmt.Errorf("%s produced unusable guess %q: %w", model, name, llm.ErrUnusableResponse)
		}
		guess = name
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("generating guess: %w", err)
	}

	log.Debug().Str("model", model).Str("domain", domain).Str("guess", guess).Msg("generated guess")
	return guess, nil
}

func (g *Generator) complete(ctx context.Context, model, prompt string) (string, error) {
	p, ok := g.providers[model]
	if !ok {
		return "", fmt.Errorf("no provider configured for model %s: %w", model, llm.ErrUnusableResponse)
	}
	resp, err := p.Complete(ctx, llm.UserPrompt(model, prompt, g.temperature))
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

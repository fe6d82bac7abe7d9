// Package pattern guesses an entity by comparing a game's answers with the
// answers of earlier successful games.
package pattern

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/maxwell142857/cs5500-group6/internal/history"
)

// ErrNoMatch is returned when no stored pattern is similar enough.
var ErrNoMatch = errors.New("no matching pattern")

const (
	// MinSimilarity is the lowest score accepted as a match.
	MinSimilarity = 0.5
	// MinOverlap is the fewest shared questions a comparison needs.
	MinOverlap = 3

	defaultCandidates = 10
	defaultPatterns   = 5
)

// Answer is one answered question of the current game.
type Answer struct {
	QuestionText string
	Answer       string
}

// Match is the matcher's guess.
type Match struct {
	Entity     string  `json:"entity"`
	Confidence float64 `json:"confidence"`
	Overlap    int     `json:"overlap"`
	GameID     string  `json:"game_id"`
}

// Source supplies candidate entities and their stored patterns.
type Source interface {
	Candidates(ctx context.Context, domain string, limit int) ([]history.Outcome, error)
	Patterns(ctx context.Context, domain, entity string, limit int) ([]history.Pattern, error)
}

// Matcher scores candidates against stored patterns.
type Matcher struct {
	src               Source
	maxCandidates     int
	patternsPerEntity int
}

// New creates a matcher. Non-positive limits fall back to 10 candidates
// and 5 patterns per candidate.
func New(src Source, maxCandidates, patternsPerEntity int) *Matcher {
	if maxCandidates <= 0 {
		maxCandidates = defaultCandidates
	}
	if patternsPerEntity <= 0 {
		patternsPerEntity = defaultPatterns
	}
	return &Matcher{src: src, maxCandidates: maxCandidates, patternsPerEntity: patternsPerEntity}
}

type scored struct {
	match       Match
	successes   int
	completedAt time.Time
}

func (a scored) beats(b *scored) bool {
	if b == nil {
		return true
	}
	if a.match.Confidence != b.match.Confidence {
		return a.match.Confidence > b.match.Confidence
	}
	if a.successes != b.successes {
		return a.successes > b.successes
	}
	return a.completedAt.After(b.completedAt)
}

// FindGuess returns the entity whose stored pattern best agrees with asked.
func (m *Matcher) FindGuess(ctx context.Context, domain string, asked []Answer) (*Match, error) {
	if len(asked) < MinOverlap {
		return nil, ErrNoMatch
	}
	current := make(map[string]string, len(asked))
	for _, a := range asked {
		current[normalize(a.QuestionText)] = a.Answer
	}

	cands, err := m.src.Candidates(ctx, domain, m.maxCandidates)
	if err != nil {
		return nil, fmt.Errorf("loading candidates: %w", err)
	}

	var best *scored
	for _, c := range cands {
		patterns, err := m.src.Patterns(ctx, domain, c.Entity, m.patternsPerEntity)
		if err != nil {
			return nil, fmt.Errorf("loading patterns for %s: %w", c.Entity, err)
		}
		for _, p := range patterns {
			score, overlap := Similarity(current, p)
			if overlap < MinOverlap {
				continue
			}
			s := scored{
				match:       Match{Entity: c.Entity, Confidence: score, Overlap: overlap, GameID: p.GameID},
				successes:   c.SuccessCount,
				completedAt: p.CompletedAt,
			}
			if s.beats(best) {
				best = &s
			}
		}
	}

	if best == nil || best.match.Confidence < MinSimilarity {
		return nil, ErrNoMatch
	}
	return &best.match, nil
}

// Similarity scores a stored pattern against the current answers, keyed by
// normalized question text: +1 for each agreeing answer, -1 for each
// disagreeing one, divided by the number of shared questions. "unknown" is
// compared like any other answer.
func Similarity(current map[string]string, p history.Pattern) (float64, int) {
	sum, overlap := 0, 0
	for _, a := range p.Answers {
		got, ok := current[normalize(a.QuestionText)]
		if !ok {
			continue
		}
		overlap++
		if got == a.Answer {
			sum++
		} else {
			sum--
		}
	}
	if overlap == 0 {
		return 0, 0
	}
	return float64(sum) / float64(overlap), overlap
}

func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

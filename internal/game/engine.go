// Package game runs guessing-game sessions: it picks each question from
// the learned cache, the external generator or emergency templates, makes
// the final guess, and hands the finished game to the learning update.
package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/maxwell142857/cs5500-group6/internal/generator"
	"github.com/maxwell142857/cs5500-group6/internal/history"
	"github.com/maxwell142857/cs5500-group6/internal/metrics"
	"github.com/maxwell142857/cs5500-group6/internal/pattern"
	"github.com/maxwell142857/cs5500-group6/internal/questions"
)

// DefaultMinQuestions is how many answers a game collects before guessing.
const DefaultMinQuestions = 8

const maxDomainLen = 50

// QuestionCache is the learned question store.
type QuestionCache interface {
	NextCached(ctx context.Context, domain string, position int, exclude []string) (*questions.Question, error)
	Ensure(ctx context.Context, text string, feature questions.Feature) (*questions.Question, error)
	RecordUsage(ctx context.Context, questionID int64, domain string, position int) error
}

// Generator produces questions and guesses with an external model.
type Generator interface {
	GenerateQuestion(ctx context.Context, domain string, turns []generator.Turn) (string, error)
	GenerateGuess(ctx context.Context, domain string, turns []generator.Turn) (string, error)
}

// Matcher guesses from earlier successful games.
type Matcher interface {
	FindGuess(ctx context.Context, domain string, asked []pattern.Answer) (*pattern.Match, error)
}

// Learner stores finished games and knows the domain's best entity.
type Learner interface {
	ApplyResult(ctx context.Context, r history.Result) error
	TopEntity(ctx context.Context, domain string) (string, error)
}

// SessionRepository persists sessions between calls.
type SessionRepository interface {
	// Load returns ErrSessionNotFound for unknown or expired ids.
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Expire(ctx context.Context, id string) error
}

// Engine drives sessions through Active, AwaitingGuess and Completed.
// Calls for one session id are serialized; different sessions run
// independently.
type Engine struct {
	sessions SessionRepository
	cache    QuestionCache
	gen      Generator
	matcher  Matcher
	learner  Learner
	metrics  *metrics.Metrics

	minQuestions int
	now          func() time.Time
	locks        *sessionLocks
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics records questions, guesses and games.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithMinQuestions overrides how many answers precede the guess.
func WithMinQuestions(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.minQuestions = n
		}
	}
}

// NewEngine creates an engine. gen may be nil, in which case questions
// come from the cache and emergency templates only.
func NewEngine(sessions SessionRepository, cache QuestionCache, gen Generator, matcher Matcher, learner Learner, opts ...Option) *Engine {
	e := &Engine{
		sessions:     sessions,
		cache:        cache,
		gen:          gen,
		matcher:      matcher,
		learner:      learner,
		minQuestions: DefaultMinQuestions,
		now:          time.Now,
		locks:        newSessionLocks(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NormalizeDomain lower-cases and validates a domain name.
func NormalizeDomain(domain string) (string, error) {
	d := strings.ToLower(strings.TrimSpace(domain))
	if d == "" || len(d) > maxDomainLen {
		return "", fmt.Errorf("%q: %w", domain, ErrInvalidDomain)
	}
	for _, r := range d {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != ' ' && r != '-' {
			return "", fmt.Errorf("%q: %w", domain, ErrInvalidDomain)
		}
	}
	return d, nil
}

// StartGame opens a new session for domain.
func (e *Engine) StartGame(ctx context.Context, domain string) (*Session, error) {
	d, err := NormalizeDomain(domain)
	if err != nil {
		return nil, err
	}
	now := e.now().UTC()
	s := &Session{
		ID:        uuid.New().String(),
		Domain:    d,
		Status:    StatusActive,
		StartedAt: now,
		UpdatedAt: now,
	}
	if err := e.sessions.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	e.metrics.GameStarted(d)
	log.Info().Str("session_id", s.ID).Str("domain", d).Msg("game started")
	return s, nil
}

// Session returns the current state of a session.
func (e *Engine) Session(ctx context.Context, id string) (*Session, error) {
	return e.sessions.Load(ctx, id)
}

// Abandon drops a session before it completes. Completed sessions are kept
// until they time out.
func (e *Engine) Abandon(ctx context.Context, id string) error {
	unlock := e.locks.lock(id)
	defer unlock()

	if _, err := e.load(ctx, id); err != nil {
		return err
	}
	return e.sessions.Expire(ctx, id)
}

// load fetches a session and rejects completed ones.
func (e *Engine) load(ctx context.Context, id string) (*Session, error) {
	s, err := e.sessions.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Status == StatusCompleted {
		return nil, ErrSessionClosed
	}
	return s, nil
}

func (e *Engine) save(ctx context.Context, s *Session) error {
	s.UpdatedAt = e.now().UTC()
	if err := e.sessions.Save(ctx, s); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// generatorFirst reports whether question n (1-indexed) asks the
// generator before the cache: questions 2, 5, 8, 11 and so on.
func generatorFirst(n int) bool {
	return n%3 == 2
}

type resolver func(ctx context.Context, s *Session, position int, exclude []string) (*PendingQuestion, error)

var errRepeated = errors.New("question already asked")

// NextQuestion returns the question to ask next. Calling it again before
// the answer arrives returns the same question.
func (e *Engine) NextQuestion(ctx context.Context, id string) (*Question, error) {
	unlock := e.locks.lock(id)
	defer unlock()

	s, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Status != StatusActive {
		return nil, fmt.Errorf("session is %s: %w", s.Status, ErrInvalidState)
	}
	if s.Pending != nil {
		return pendingQuestion(s), nil
	}

	position := s.QuestionsAsked()
	n := position + 1
	exclude := s.askedTexts()

	chain := []resolver{e.fromCache, e.fromGenerator}
	if generatorFirst(n) {
		chain = []resolver{e.fromGenerator, e.fromCache}
	}

	var p *PendingQuestion
	for _, r := range chain {
		p, err = r(ctx, s, position, exclude)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Debug().Err(err).Str("session_id", id).Int("question", n).Msg("question source skipped")
	}
	if p == nil {
		if p, err = e.fromEmergency(ctx, s, position, exclude); err != nil {
			return nil, err
		}
	}

	if err := e.cache.RecordUsage(ctx, p.QuestionID, s.Domain, position); err != nil {
		log.Warn().Err(err).Int64("question_id", p.QuestionID).Msg("recording question usage")
	}

	s.Pending = p
	if err := e.save(ctx, s); err != nil {
		return nil, err
	}
	e.metrics.QuestionServed(string(p.Source))
	log.Debug().Str("session_id", id).Int("question", n).Str("source", string(p.Source)).Msg("question issued")
	return pendingQuestion(s), nil
}

func pendingQuestion(s *Session) *Question {
	return &Question{
		ID:        s.Pending.QuestionID,
		Text:      s.Pending.Text,
		Number:    s.QuestionsAsked() + 1,
		Source:    s.Pending.Source,
		Emergency: s.Pending.Source == SourceEmergency,
	}
}

func (e *Engine) fromCache(ctx context.Context, s *Session, position int, exclude []string) (*PendingQuestion, error) {
	q, err := e.cache.NextCached(ctx, s.Domain, position, exclude)
	if err != nil {
		return nil, err
	}
	return &PendingQuestion{
		QuestionID: q.ID,
		Text:       q.Text,
		Position:   position,
		Feature:    q.Feature,
		Source:     SourceCache,
	}, nil
}

func (e *Engine) fromGenerator(ctx context.Context, s *Session, position int, exclude []string) (*PendingQuestion, error) {
	if e.gen == nil {
		return nil, ErrGeneratorUnavailable
	}
	text, err := e.gen.GenerateQuestion(ctx, s.Domain, turns(s))
	if err != nil {
		return nil, err
	}
	for _, asked := range exclude {
		if strings.EqualFold(asked, text) {
			return nil, errRepeated
		}
	}
	q, err := e.cache.Ensure(ctx, text, questions.FeatureAIGenerated)
	if err != nil {
		return nil, fmt.Errorf("storing generated question: %w", err)
	}
	return &PendingQuestion{
		QuestionID: q.ID,
		Text:       q.Text,
		Position:   position,
		Feature:    q.Feature,
		Source:     SourceGenerator,
	}, nil
}

func (e *Engine) fromEmergency(ctx context.Context, s *Session, position int, exclude []string) (*PendingQuestion, error) {
	text, ok := EmergencyQuestion(s.Domain, position, exclude)
	if !ok {
		return nil, ErrGeneratorUnavailable
	}
	q, err := e.cache.Ensure(ctx, text, questions.FeatureEmergency)
	if err != nil {
		return nil, fmt.Errorf("storing emergency question: %w", err)
	}
	log.Warn().Str("session_id", s.ID).Str("domain", s.Domain).Msg("using emergency question")
	return &PendingQuestion{
		QuestionID: q.ID,
		Text:       q.Text,
		Position:   position,
		Feature:    questions.FeatureEmergency,
		Source:     SourceEmergency,
	}, nil
}

// SubmitAnswer records the answer to the pending question.
func (e *Engine) SubmitAnswer(ctx context.Context, id string, questionID int64, answer string) (*AnswerResult, error) {
	unlock := e.locks.lock(id)
	defer unlock()

	s, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Status != StatusActive {
		return nil, fmt.Errorf("session is %s: %w", s.Status, ErrInvalidState)
	}
	if s.Pending == nil {
		return nil, fmt.Errorf("no question pending: %w", ErrInvalidState)
	}
	if s.Pending.QuestionID != questionID {
		return nil, fmt.Errorf("question %d is not pending: %w", questionID, ErrInvalidState)
	}
	normalized, err := NormalizeAnswer(answer)
	if err != nil {
		return nil, err
	}

	p := s.Pending
	s.Asked = append(s.Asked, AskedQuestion{
		QuestionID: p.QuestionID,
		Text:       p.Text,
		Answer:     normalized,
		AskOrder:   len(s.Asked) + 1,
		Position:   p.Position,
		Feature:    p.Feature,
		Source:     p.Source,
	})
	s.Pending = nil
	if s.QuestionsAsked() >= e.minQuestions {
		s.Status = StatusAwaitingGuess
	}
	if err := e.save(ctx, s); err != nil {
		return nil, err
	}

	return &AnswerResult{
		QuestionsAsked: s.QuestionsAsked(),
		Status:         s.Status,
		ShouldGuess:    s.Status == StatusAwaitingGuess,
	}, nil
}

// MakeGuess returns the engine's guess. It tries stored patterns, then the
// generator, then the emergency guess; the last is flagged, not an error.
// Asking again returns the same guess.
func (e *Engine) MakeGuess(ctx context.Context, id string) (*Guess, error) {
	unlock := e.locks.lock(id)
	defer unlock()

	s, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Status != StatusAwaitingGuess {
		return nil, fmt.Errorf("session is %s: %w", s.Status, ErrInvalidState)
	}
	if s.LastGuess != nil {
		return s.LastGuess, nil
	}

	g := e.resolveGuess(ctx, s)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	s.LastGuess = g
	if err := e.save(ctx, s); err != nil {
		return nil, err
	}
	e.metrics.GuessMade(string(g.Source))
	log.Info().Str("session_id", id).Str("guess", g.Entity).Str("source", string(g.Source)).Msg("guess made")
	return g, nil
}

func (e *Engine) resolveGuess(ctx context.Context, s *Session) *Guess {
	asked := make([]pattern.Answer, 0, len(s.Asked))
	for _, a := range s.Asked {
		asked = append(asked, pattern.Answer{QuestionText: a.Text, Answer: a.Answer})
	}

	m, err := e.matcher.FindGuess(ctx, s.Domain, asked)
	if err == nil {
		return &Guess{Entity: m.Entity, Source: SourcePattern, Confidence: m.Confidence}
	}
	if !errors.Is(err, pattern.ErrNoMatch) {
		log.Warn().Err(err).Str("session_id", s.ID).Msg("pattern match failed")
	}

	if e.gen != nil {
		name, err := e.gen.GenerateGuess(ctx, s.Domain, turns(s))
		if err == nil {
			return &Guess{Entity: name, Source: SourceGenerator}
		}
		log.Warn().Err(err).Str("session_id", s.ID).Msg("generator guess failed")
	}

	name, err := e.learner.TopEntity(ctx, s.Domain)
	if err != nil {
		if !errors.Is(err, history.ErrNotFound) {
			log.Warn().Err(err).Str("domain", s.Domain).Msg("top entity lookup failed")
		}
		name = DefaultGuess(s.Domain)
	}
	return &Guess{Entity: name, Source: SourceEmergency, Emergency: true}
}

// SubmitResult closes the game and applies the learning update. A wrong
// guess needs the actual entity. The session is marked completed only
// once the update has been stored.
func (e *Engine) SubmitResult(ctx context.Context, id string, wasCorrect bool, actualEntity string) (*Session, error) {
	unlock := e.locks.lock(id)
	defer unlock()

	s, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Status != StatusAwaitingGuess {
		return nil, fmt.Errorf("session is %s: %w", s.Status, ErrInvalidState)
	}

	actual := strings.TrimSpace(actualEntity)
	var guessed string
	if s.LastGuess != nil {
		guessed = s.LastGuess.Entity
	}
	if !wasCorrect && actual == "" {
		return nil, fmt.Errorf("actual entity required for a wrong guess: %w", ErrInvalidResult)
	}
	if wasCorrect && actual == "" && guessed == "" {
		return nil, fmt.Errorf("no guess to confirm: %w", ErrInvalidResult)
	}

	now := e.now().UTC()
	result := history.Result{
		GameID:      s.ID,
		Domain:      s.Domain,
		Correct:     wasCorrect,
		Guessed:     guessed,
		Actual:      actual,
		StartedAt:   s.StartedAt,
		CompletedAt: now,
	}
	for _, a := range s.Asked {
		result.Asked = append(result.Asked, history.AskedQuestion{
			QuestionID: a.QuestionID,
			Text:       a.Text,
			Answer:     a.Answer,
			Position:   a.Position,
			Feature:    a.Feature,
		})
	}
	if err := e.learner.ApplyResult(ctx, result); err != nil {
		return nil, fmt.Errorf("applying result: %w", err)
	}

	s.Status = StatusCompleted
	s.Correct = &wasCorrect
	s.CompletedAt = &now
	if err := e.save(ctx, s); err != nil {
		return nil, err
	}
	e.metrics.GameCompleted(s.Domain, wasCorrect)
	log.Info().Str("session_id", id).Bool("correct", wasCorrect).Str("target", result.Target()).Msg("game completed")
	return s, nil
}

func turns(s *Session) []generator.Turn {
	out := make([]generator.Turn, 0, len(s.Asked))
	for _, a := range s.Asked {
		out = append(out, generator.Turn{Question: a.Text, Answer: a.Answer})
	}
	return out
}

package rotation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/maxwell142857/cs5500-group6/internal/llm"
	"github.com/maxwell142857/cs5500-group6/internal/metrics"
	"github.com/maxwell142857/cs5500-group6/internal/quota"
)

var (
	// ErrExhausted means no model is currently within quota and off cooldown.
	ErrExhausted = errors.New("all models exhausted")
	// ErrAllFailed means every attempted model failed. It wraps the last
	// failure.
	ErrAllFailed = errors.New("all model attempts failed")
)

// Quota is the part of quota.Tracker the scheduler needs.
type Quota interface {
	TryReserve(model string) quota.Decision
	Commit(ctx context.Context, model string)
}

// Config holds call timing.
type Config struct {
	CallTimeout     time.Duration
	FailureCooldown time.Duration
	QuotaCooldown   time.Duration
}

// Scheduler picks the model for each external call from a priority list.
type Scheduler struct {
	quota   Quota
	models  []string
	cfg     Config
	metrics *metrics.Metrics
	now     func() time.Time

	mu        sync.Mutex
	coolUntil map[string]time.Time
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock overrides the time source used for cooldowns.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithMetrics records call outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scheduler) { s.metrics = m }
}

// New creates a scheduler over models, highest priority first.
func New(q Quota, models []string, cfg Config, opts ...Option) *Scheduler {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 15 * time.Second
	}
	s := &Scheduler{
		quota:     q,
		models:    append([]string(nil), models...),
		cfg:       cfg,
		now:       time.Now,
		coolUntil: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SelectModel returns the first model that is off cooldown and within quota.
func (s *Scheduler) SelectModel() (string, error) {
	return s.selectModel(nil)
}

func (s *Scheduler) selectModel(skip map[string]bool) (string, error) {
	now := s.now()
	for _, m := range s.models {
		if skip[m] || s.cooling(m, now) {
			continue
		}
		d := s.quota.TryReserve(m)
		if d.Allowed {
			return m, nil
		}
		s.metrics.QuotaDenied(m, string(d.Reason))
		log.Debug().Str("model", m).Str("reason", string(d.Reason)).Msg("model over quota")
	}
	return "", ErrExhausted
}

func (s *Scheduler) cooling(model string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.coolUntil[model]
	if !ok {
		return false
	}
	if !now.Before(until) {
		delete(s.coolUntil, model)
		return false
	}
	return true
}

func (s *Scheduler) coolDown(model string, d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	s.coolUntil[model] = s.now().Add(d)
	s.mu.Unlock()
}

// Cooldowns returns the models currently cooling down and when each
// becomes eligible again.
func (s *Scheduler) Cooldowns() map[string]time.Time {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]time.Time, len(s.coolUntil))
	for m, until := range s.coolUntil {
		if now.Before(until) {
			out[m] = until
		}
	}
	return out
}

// Do runs call against models in priority order until one succeeds. Each
// model is tried at most once and each attempt gets its own timeout.
// It returns the model that succeeded.
//
// Successful calls and unusable replies count against quota. Rate-limit
// and transient failures put the model on cooldown and are not counted.
func (s *Scheduler) Do(ctx context.Context, call func(ctx context.Context, model string) error) (string, error) {
	tried := make(map[string]bool, len(s.models))
	var lastErr error

	for range s.models {
		model, err := s.selectModel(tried)
		if err != nil {
			if lastErr != nil {
				return "", fmt.Errorf("%w: %w", ErrAllFailed, lastErr)
			}
			return "", err
		}
		tried[model] = true

		callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
		start := time.Now()
		err = call(callCtx, model)
		cancel()
		elapsed := time.Since(start).Seconds()

		if err == nil {
			s.quota.Commit(ctx, model)
			s.metrics.ObserveGeneratorCall(model, "ok", elapsed)
			return model, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		lastErr = err
		class := llm.ClassifyError(err)
		s.metrics.ObserveGeneratorCall(model, class.String(), elapsed)
		log.Warn().Err(err).Str("model", model).Str("class", class.String()).Msg("generator call failed")

		switch class {
		case llm.ClassQuota:
			s.coolDown(model, s.cfg.QuotaCooldown)
		case llm.ClassRetryable:
			s.coolDown(model, s.cfg.FailureCooldown)
		default:
			s.quota.Commit(ctx, model)
		}
	}

	if lastErr != nil {
		return "", fmt.Errorf("%w: %w", ErrAllFailed, lastErr)
	}
	return "", ErrExhausted
}

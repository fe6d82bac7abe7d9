package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/maxwell142857/cs5500-group6/internal/db"
	"github.com/maxwell142857/cs5500-group6/internal/questions"
)

// Store manages entity outcomes and game history, and applies the
// learning update when a game ends.
type Store struct {
	db        *db.DB
	questions *questions.Store
}

// NewStore creates a new history store.
func NewStore(database *db.DB, qs *questions.Store) *Store {
	return &Store{db: database, questions: qs}
}

// Candidates returns entities of domain that have been guessed right at
// least once, most successful first.
func (s *Store) Candidates(ctx context.Context, domain string, limit int) ([]Outcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT domain, entity_name, success_count, fail_count
		 FROM domain_guesses
		 WHERE domain = ? AND success_count > 0
		 ORDER BY success_count DESC, fail_count ASC, entity_name ASC
		 LIMIT ?`, domain, limit)
	if err != nil {
		return nil, fmt.Errorf("listing candidates: %w", err)
	}
	defer rows.Close()

	var out []Outcome
	for rows.Next() {
		var o Outcome
		if err := rows.Scan(&o.Domain, &o.Entity, &o.SuccessCount, &o.FailCount); err != nil {
			return nil, fmt.Errorf("scanning candidate: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// TopEntity returns the most successful entity of domain.
func (s *Store) TopEntity(ctx context.Context, domain string) (string, error) {
	cands, err := s.Candidates(ctx, domain, 1)
	if err != nil {
		return "", err
	}
	if len(cands) == 0 {
		return "", ErrNotFound
	}
	return cands[0].Entity, nil
}

// Outcome returns the record of entity in domain. Entity names compare
// case-insensitively.
func (s *Store) Outcome(ctx context.Context, domain, entity string) (*Outcome, error) {
	var o Outcome
	err := s.db.QueryRowContext(ctx,
		`SELECT domain, entity_name, success_count, fail_count
		 FROM domain_guesses WHERE domain = ? AND entity_name = ?`,
		domain, entity,
	).Scan(&o.Domain, &o.Entity, &o.SuccessCount, &o.FailCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting outcome: %w", err)
	}
	return &o, nil
}

// Patterns returns up to limit answer sequences of successful games about
// entity, most recent first.
func (s *Store) Patterns(ctx context.Context, domain, entity string, limit int) ([]Pattern, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, target_entity, completed_at FROM game_history
		 WHERE domain = ? AND target_entity = ? AND was_correct = 1
		 ORDER BY completed_at DESC, rowid DESC
		 LIMIT ?`, domain, entity, limit)
	if err != nil {
		return nil, fmt.Errorf("listing patterns: %w", err)
	}
	var patterns []Pattern
	for rows.Next() {
		var p Pattern
		if err := rows.Scan(&p.GameID, &p.Entity, &p.CompletedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning pattern: %w", err)
		}
		patterns = append(patterns, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Answers are read after the outer rows are closed; the pool may hold
	// a single connection.
	for i := range patterns {
		answers, err := s.answers(ctx, patterns[i].GameID)
		if err != nil {
			return nil, err
		}
		patterns[i].Answers = answers
	}
	return patterns, nil
}

func (s *Store) answers(ctx context.Context, gameID string) ([]PatternAnswer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT gq.question_id, q.question_text, gq.answer
		 FROM game_questions gq JOIN questions q ON q.id = gq.question_id
		 WHERE gq.game_id = ?
		 ORDER BY gq.ask_order`, gameID)
	if err != nil {
		return nil, fmt.Errorf("reading game answers: %w", err)
	}
	defer rows.Close()

	var out []PatternAnswer
	for rows.Next() {
		var a PatternAnswer
		if err := rows.Scan(&a.QuestionID, &a.QuestionText, &a.Answer); err != nil {
			return nil, fmt.Errorf("scanning game answer: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Recent lists the latest finished games of domain.
func (s *Store) Recent(ctx context.Context, domain string, limit int) ([]GameRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, domain, target_entity, guessed_entity, was_correct, questions_count, duration_seconds, completed_at
		 FROM game_history WHERE domain = ?
		 ORDER BY completed_at DESC, rowid DESC LIMIT ?`, domain, limit)
	if err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}
	defer rows.Close()

	var out []GameRecord
	for rows.Next() {
		var g GameRecord
		if err := rows.Scan(&g.ID, &g.Domain, &g.TargetEntity, &g.GuessedEntity, &g.WasCorrect,
			&g.QuestionsCount, &g.DurationSeconds, &g.CompletedAt); err != nil {
			return nil, fmt.Errorf("scanning game: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// ApplyResult runs the learning update for a finished game in a single
// transaction: slot effectiveness, question success rates, entity outcomes
// and the game history rows either all change or none do. A game that is
// already recorded is left untouched, so the call can be repeated.
func (s *Store) ApplyResult(ctx context.Context, r Result) error {
	if !r.Correct && strings.TrimSpace(r.Actual) == "" {
		return fmt.Errorf("actual entity is required for an incorrect guess")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var recorded int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM game_history WHERE id = ?`, r.GameID).Scan(&recorded); err != nil {
		return fmt.Errorf("checking game history: %w", err)
	}
	if recorded > 0 {
		return nil
	}

	qs := s.questions.WithTx(tx)

	delta := IncorrectDelta
	if r.Correct {
		delta = CorrectDelta
	}

	for _, a := range r.Asked {
		if err := qs.RecordOutcome(ctx, a.QuestionID, r.Correct); err != nil {
			return err
		}
		if a.Feature == questions.FeatureEmergency {
			continue
		}
		created, err := qs.EnsureSlot(ctx, r.Domain, a.QuestionID, a.Position, 1, questions.DefaultEffectiveness)
		if err != nil {
			return err
		}
		if created {
			continue
		}
		if err := qs.AdjustEffectiveness(ctx, r.Domain, a.QuestionID, delta); err != nil {
			return err
		}
	}

	target := r.Target()
	if r.Correct {
		if err := upsertOutcome(ctx, tx, r.Domain, target, 1, 0); err != nil {
			return err
		}
	} else {
		if r.Guessed != "" {
			if err := upsertOutcome(ctx, tx, r.Domain, r.Guessed, 0, 1); err != nil {
				return err
			}
		}
		if err := upsertOutcome(ctx, tx, r.Domain, target, 0, 0); err != nil {
			return err
		}
	}

	duration := int(r.CompletedAt.Sub(r.StartedAt).Seconds())
	if duration < 0 {
		duration = 0
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO game_history (id, target_entity, guessed_entity, domain, was_correct, questions_count, duration_seconds, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.GameID, target, r.Guessed, r.Domain, r.Correct, len(r.Asked), duration, r.CompletedAt.UTC()); err != nil {
		return fmt.Errorf("inserting game history: %w", err)
	}
	for i, a := range r.Asked {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO game_questions (game_id, question_id, answer, ask_order) VALUES (?, ?, ?, ?)`,
			r.GameID, a.QuestionID, a.Answer, i+1); err != nil {
			return fmt.Errorf("inserting game question: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing learning update: %w", err)
	}
	return nil
}

func upsertOutcome(ctx context.Context, tx *sql.Tx, domain, entity string, success, fail int) error {
	entity = strings.TrimSpace(entity)
	if entity == "" {
		return nil
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO domain_guesses (domain, entity_name, success_count, fail_count)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(domain, entity_name) DO UPDATE SET
		     success_count = domain_guesses.success_count + excluded.success_count,
		     fail_count = domain_guesses.fail_count + excluded.fail_count`,
		domain, entity, success, fail); err != nil {
		return fmt.Errorf("updating outcome for %s: %w", entity, err)
	}
	return nil
}

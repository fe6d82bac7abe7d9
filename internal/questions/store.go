package questions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/maxwell142857/cs5500-group6/internal/db"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store manages questions and their per-domain slots.
type Store struct {
	db querier
}

// NewStore creates a new question store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// WithTx returns a Store whose statements run inside tx.
func (s *Store) WithTx(tx *sql.Tx) *Store {
	return &Store{db: tx}
}

const questionColumns = `q.id, q.question_text, q.feature, q.ask_count, q.success_rate, q.last_used`

type scanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row scanner) (*Question, error) {
	var q Question
	var lastUsed sql.NullTime
	if err := row.Scan(&q.ID, &q.Text, &q.Feature, &q.AskCount, &q.SuccessRate, &lastUsed); err != nil {
		return nil, err
	}
	if lastUsed.Valid {
		t := lastUsed.Time
		q.LastUsedAt = &t
	}
	return &q, nil
}

// NextCached returns the best question slotted at position in domain whose
// text is not in exclude, ignoring case. Ranking is effectiveness, then usage.
func (s *Store) NextCached(ctx context.Context, domain string, position int, exclude []string) (*Question, error) {
	query := `SELECT ` + questionColumns + `
		FROM domain_questions dq
		JOIN questions q ON q.id = dq.question_id
		WHERE dq.domain = ? AND dq.position = ?`
	args := []any{domain, position}

	if len(exclude) > 0 {
		query += " AND LOWER(q.question_text) NOT IN (" + strings.TrimSuffix(strings.Repeat("?,", len(exclude)), ",") + ")"
		for _, text := range exclude {
			args = append(args, strings.ToLower(text))
		}
	}
	query += " ORDER BY dq.effectiveness DESC, dq.usage_count DESC, q.id ASC LIMIT 1"

	q, err := scanQuestion(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("selecting cached question: %w", err)
	}
	return q, nil
}

// Get returns the question with the given id.
func (s *Store) Get(ctx context.Context, id int64) (*Question, error) {
	q, err := scanQuestion(s.db.QueryRowContext(ctx,
		`SELECT `+questionColumns+` FROM questions q WHERE q.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting question %d: %w", id, err)
	}
	return q, nil
}

// Ensure returns the question with text, inserting it with feature if it
// does not exist yet. An existing question keeps its original feature.
func (s *Store) Ensure(ctx context.Context, text string, feature Feature) (*Question, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("question text is required")
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO questions (question_text, feature) VALUES (?, ?)
		 ON CONFLICT(question_text) DO NOTHING`, text, feature); err != nil {
		return nil, fmt.Errorf("inserting question: %w", err)
	}

	q, err := scanQuestion(s.db.QueryRowContext(ctx,
		`SELECT `+questionColumns+` FROM questions q WHERE q.question_text = ?`, text))
	if err != nil {
		return nil, fmt.Errorf("reading question: %w", err)
	}
	return q, nil
}

// RecordUsage notes that a question was asked at position in domain. It
// bumps the question's ask count and gives an existing slot a position if
// it has none. Slot usage counts are updated only when a game completes.
func (s *Store) RecordUsage(ctx context.Context, questionID int64, domain string, position int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE questions SET ask_count = ask_count + 1, last_used = ? WHERE id = ?`,
		time.Now().UTC(), questionID)
	if err != nil {
		return fmt.Errorf("recording question usage: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE domain_questions SET position = ?
		 WHERE domain = ? AND question_id = ? AND position IS NULL`,
		position, domain, questionID); err != nil {
		return fmt.Errorf("setting slot position: %w", err)
	}
	return nil
}

// AdjustEffectiveness adds delta to a slot's effectiveness, clamped to
// [0, 1], and counts one more use of the slot.
func (s *Store) AdjustEffectiveness(ctx context.Context, domain string, questionID int64, delta float64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE domain_questions
		 SET effectiveness = MIN(1.0, MAX(0.0, effectiveness + ?)),
		     usage_count = usage_count + 1
		 WHERE domain = ? AND question_id = ?`,
		delta, domain, questionID)
	if err != nil {
		return fmt.Errorf("adjusting effectiveness: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// EnsureSlot creates a slot for the question in domain if none exists.
// It reports whether a slot was created.
func (s *Store) EnsureSlot(ctx context.Context, domain string, questionID int64, position int, usage int, effectiveness float64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO domain_questions (domain, question_id, position, usage_count, effectiveness)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(domain, question_id) DO NOTHING`,
		domain, questionID, position, usage, effectiveness)
	if err != nil {
		return false, fmt.Errorf("creating slot: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Slot returns the slot for a question in domain.
func (s *Store) Slot(ctx context.Context, domain string, questionID int64) (*Slot, error) {
	var sl Slot
	var pos sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT domain, question_id, position, usage_count, effectiveness
		 FROM domain_questions WHERE domain = ? AND question_id = ?`,
		domain, questionID,
	).Scan(&sl.Domain, &sl.QuestionID, &pos, &sl.UsageCount, &sl.Effectiveness)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting slot: %w", err)
	}
	if pos.Valid {
		p := int(pos.Int64)
		sl.Position = &p
	}
	return &sl, nil
}

// RecordOutcome folds one finished game into the question's success rate.
func (s *Store) RecordOutcome(ctx context.Context, questionID int64, success bool) error {
	x := 0.0
	if success {
		x = 1.0
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE questions
		 SET success_rate = (success_rate * result_count + ?) / (result_count + 1),
		     result_count = result_count + 1
		 WHERE id = ?`, x, questionID); err != nil {
		return fmt.Errorf("recording question outcome: %w", err)
	}
	return nil
}

// Seed stores a curated question for domain at position. Seeding the same
// text again moves an unpositioned slot to position and leaves scores alone.
func (s *Store) Seed(ctx context.Context, domain string, position int, text string) (*Question, error) {
	q, err := s.Ensure(ctx, text, FeatureCached)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO domain_questions (domain, question_id, position, usage_count, effectiveness)
		 VALUES (?, ?, ?, 0, ?)
		 ON CONFLICT(domain, question_id) DO UPDATE SET position = COALESCE(domain_questions.position, excluded.position)`,
		domain, q.ID, position, DefaultEffectiveness); err != nil {
		return nil, fmt.Errorf("seeding slot: %w", err)
	}
	return q, nil
}

// Ranked lists the slots of domain, best first.
func (s *Store) Ranked(ctx context.Context, domain string, limit int) ([]RankedQuestion, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT dq.domain, dq.question_id, dq.position, dq.usage_count, dq.effectiveness, q.question_text
		 FROM domain_questions dq JOIN questions q ON q.id = dq.question_id
		 WHERE dq.domain = ?
		 ORDER BY dq.effectiveness DESC, dq.usage_count DESC, q.id ASC
		 LIMIT ?`, domain, limit)
	if err != nil {
		return nil, fmt.Errorf("listing slots: %w", err)
	}
	defer rows.Close()

	var out []RankedQuestion
	for rows.Next() {
		var r RankedQuestion
		var pos sql.NullInt64
		if err := rows.Scan(&r.Domain, &r.QuestionID, &pos, &r.UsageCount, &r.Effectiveness, &r.Text); err != nil {
			return nil, fmt.Errorf("scanning slot: %w", err)
		}
		if pos.Valid {
			p := int(pos.Int64)
			r.Position = &p
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

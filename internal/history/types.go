package history

import (
	"errors"
	"time"

	"github.com/maxwell142857/cs5500-group6/internal/questions"
)

// ErrNotFound is returned when a domain has no matching entity.
var ErrNotFound = errors.New("no entity found")

// Learning steps applied to every slot used in a finished game.
const (
	CorrectDelta   = 0.1
	IncorrectDelta = -0.05
)

// Outcome is the guess record of one entity in a domain.
type Outcome struct {
	Domain       string `json:"domain"`
	Entity       string `json:"entity"`
	SuccessCount int    `json:"success_count"`
	FailCount    int    `json:"fail_count"`
}

// PatternAnswer is one answered question of a stored game.
type PatternAnswer struct {
	QuestionID   int64  `json:"question_id"`
	QuestionText string `json:"question_text"`
	Answer       string `json:"answer"`
}

// Pattern is the answer sequence of one successful game.
type Pattern struct {
	GameID      string          `json:"game_id"`
	Entity      string          `json:"entity"`
	CompletedAt time.Time       `json:"completed_at"`
	Answers     []PatternAnswer `json:"answers"`
}

// AskedQuestion is a question answered during a game, with where it was asked.
type AskedQuestion struct {
	QuestionID int64
	Text       string
	Answer     string
	Position   int
	Feature    questions.Feature
}

// Result is everything the learning update needs from a finished game.
type Result struct {
	GameID      string
	Domain      string
	Correct     bool
	Guessed     string
	Actual      string
	StartedAt   time.Time
	CompletedAt time.Time
	Asked       []AskedQuestion
}

// Target is the entity the game was about, if known.
func (r Result) Target() string {
	if r.Actual != "" {
		return r.Actual
	}
	if r.Correct {
		return r.Guessed
	}
	return ""
}

// GameRecord is a summary row of game history.
type GameRecord struct {
	ID              string    `json:"id"`
	Domain          string    `json:"domain"`
	TargetEntity    string    `json:"target_entity"`
	GuessedEntity   string    `json:"guessed_entity"`
	WasCorrect      bool      `json:"was_correct"`
	QuestionsCount  int       `json:"questions_count"`
	DurationSeconds int       `json:"duration_seconds"`
	CompletedAt     time.Time `json:"completed_at"`
}

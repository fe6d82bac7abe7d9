package game

import (
	"time"

	"github.com/maxwell142857/cs5500-group6/internal/questions"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusActive        Status = "active"
	StatusAwaitingGuess Status = "awaiting_guess"
	StatusCompleted     Status = "completed"
)

// Source names the resolver that produced a question or guess.
type Source string

const (
	SourceCache     Source = "cache"
	SourceGenerator Source = "generator"
	SourcePattern   Source = "pattern"
	SourceEmergency Source = "emergency"
)

// Normalized answers.
const (
	AnswerYes     = "yes"
	AnswerNo      = "no"
	AnswerUnknown = "unknown"
)

// AskedQuestion is a question the user has answered.
type AskedQuestion struct {
	QuestionID int64             `json:"question_id"`
	Text       string            `json:"text"`
	Answer     string            `json:"answer"`
	AskOrder   int               `json:"ask_order"`
	Position   int               `json:"position"`
	Feature    questions.Feature `json:"feature"`
	Source     Source            `json:"source"`
}

// PendingQuestion is a question issued but not yet answered.
type PendingQuestion struct {
	QuestionID int64             `json:"question_id"`
	Text       string            `json:"text"`
	Position   int               `json:"position"`
	Feature    questions.Feature `json:"feature"`
	Source     Source            `json:"source"`
}

// Session is one game in progress or finished.
type Session struct {
	ID          string           `json:"id"`
	Domain      string           `json:"domain"`
	Status      Status           `json:"status"`
	Asked       []AskedQuestion  `json:"asked"`
	Pending     *PendingQuestion `json:"pending,omitempty"`
	LastGuess   *Guess           `json:"last_guess,omitempty"`
	Correct     *bool            `json:"correct,omitempty"`
	StartedAt   time.Time        `json:"started_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

// QuestionsAsked is the number of answered questions.
func (s *Session) QuestionsAsked() int {
	return len(s.Asked)
}

func (s *Session) askedTexts() []string {
	out := make([]string, 0, len(s.Asked)+1)
	for _, a := range s.Asked {
		out = append(out, a.Text)
	}
	return out
}

// Question is what NextQuestion hands to the caller.
type Question struct {
	ID        int64  `json:"question_id"`
	Text      string `json:"question"`
	Number    int    `json:"question_number"`
	Source    Source `json:"source"`
	Emergency bool   `json:"emergency"`
}

// AnswerResult is what SubmitAnswer returns.
type AnswerResult struct {
	QuestionsAsked int    `json:"questions_asked"`
	Status         Status `json:"status"`
	ShouldGuess    bool   `json:"should_guess"`
}

// Guess is the engine's final answer.
type Guess struct {
	Entity     string  `json:"guess"`
	Source     Source  `json:"source"`
	Confidence float64 `json:"confidence,omitempty"`
	Emergency  bool    `json:"emergency"`
}

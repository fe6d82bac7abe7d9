package questions

import (
	"errors"
	"time"
)

// ErrNotFound is returned when no question or slot matches.
var ErrNotFound = errors.New("question not found")

// Feature records where a question came from.
type Feature string

const (
	FeatureAIGenerated Feature = "ai_generated"
	FeatureCached      Feature = "cached"
	FeatureEmergency   Feature = "emergency"
)

// DefaultEffectiveness is the starting score of a new slot.
const DefaultEffectiveness = 0.5

// Question is a stored yes/no question. Questions are never deleted.
type Question struct {
	ID          int64      `json:"id"`
	Text        string     `json:"text"`
	Feature     Feature    `json:"feature"`
	AskCount    int        `json:"ask_count"`
	SuccessRate float64    `json:"success_rate"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
}

// Slot ties a question to a domain, with the position it is usually asked
// at and how well it has worked there.
type Slot struct {
	Domain        string  `json:"domain"`
	QuestionID    int64   `json:"question_id"`
	Position      *int    `json:"position,omitempty"`
	UsageCount    int     `json:"usage_count"`
	Effectiveness float64 `json:"effectiveness"`
}

// RankedQuestion is a slot joined with its question text.
type RankedQuestion struct {
	Slot
	Text string `json:"text"`
}

package game

import (
	"fmt"
	"strings"
)

var unknownPhrases = []string{"don't know", "dont know", "not sure", "no idea"}

var unknownWords = map[string]bool{
	"unknown": true, "maybe": true, "perhaps": true, "possibly": true,
	"probably": true, "sometimes": true, "unsure": true, "idk": true,
}

var yesWords = map[string]bool{
	"yes": true, "yeah": true, "yep": true, "correct": true,
	"true": true, "right": true, "sure": true, "y": true,
}

var noWords = map[string]bool{
	"no": true, "nope": true, "not": true, "false": true,
	"wrong": true, "nah": true, "n": true,
}

// NormalizeAnswer maps free-form input onto yes, no or unknown. Hedges are
// checked first so "not sure" is unknown rather than no.
func NormalizeAnswer(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", fmt.Errorf("empty answer: %w", ErrInvalidAnswer)
	}
	for _, p := range unknownPhrases {
		if strings.Contains(s, p) {
			return AnswerUnknown, nil
		}
	}

	words := strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && r != '\''
	})
	for _, w := range words {
		if unknownWords[w] {
			return AnswerUnknown, nil
		}
	}
	for _, w := range words {
		switch {
		case yesWords[w]:
			return AnswerYes, nil
		case noWords[w]:
			return AnswerNo, nil
		}
	}
	return "", fmt.Errorf("%q: %w", raw, ErrInvalidAnswer)
}

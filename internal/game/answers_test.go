package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAnswer(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"yes", AnswerYes},
		{"  YES ", AnswerYes},
		{"y", AnswerYes},
		{"Yeah, I think so", AnswerYes},
		{"correct!", AnswerYes},
		{"no", AnswerNo},
		{"Nope.", AnswerNo},
		{"n", AnswerNo},
		{"not really", AnswerNo},
		{"I don't know", AnswerUnknown},
		{"not sure", AnswerUnknown},
		{"maybe yes", AnswerUnknown},
		{"unknown", AnswerUnknown},
		{"idk", AnswerUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeAnswer(tt.in)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeAnswerRejects(t *testing.T) {
	for _, in := range []string{"", "   ", "purple", "42"} {
		_, err := NormalizeAnswer(in)
		assert.ErrorIs(t, err, ErrInvalidAnswer, "input %q", in)
	}
}

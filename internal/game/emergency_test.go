package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmergencyQuestionRotates(t *testing.T) {
	q, ok := EmergencyQuestion("animal", 0, nil)
	require.True(t, ok)
	assert.Equal(t, "Is this animal considered popular?", q)

	q, ok = EmergencyQuestion("animal", 3, nil)
	require.True(t, ok)
	assert.Equal(t, "Has this animal existed for more than 13 years?", q)

	q, ok = EmergencyQuestion("animal", 0, []string{"Is this animal considered popular?"})
	require.True(t, ok)
	assert.Equal(t, "Is this animal something most people know about?", q)
}

func TestEmergencyQuestionSkipsAskedIgnoringCase(t *testing.T) {
	q, ok := EmergencyQuestion("animal", 0, []string{"IS THIS ANIMAL CONSIDERED POPULAR?"})
	require.True(t, ok)
	assert.Equal(t, "Is this animal something most people know about?", q)
}

func TestEmergencyQuestionExhausted(t *testing.T) {
	var asked []string
	for i := 0; i < len(emergencyTemplates); i++ {
		asked = append(asked, emergencyTemplates[i]("food", 1))
	}
	_, ok := EmergencyQuestion("food", 1, asked)
	assert.False(t, ok)
}

func TestDefaultGuess(t *testing.T) {
	assert.Equal(t, "Dog", DefaultGuess("animal"))
	assert.Equal(t, "Harry Potter", DefaultGuess("Book"))
	assert.Equal(t, "popular planet", DefaultGuess("planet"))
}

package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerUnmarshalKeepsKind(t *testing.T) {
	tests := []struct {
		name string
		in   string
		kind AnswerKind
		text string
	}{
		{"string", `"often"`, AnswerString, "often"},
		{"int", `4`, AnswerInt, "4"},
		{"negative int", `-2`, AnswerInt, "-2"},
		{"float", `0.75`, AnswerFloat, "0.75"},
		{"float with zero fraction", `3.0`, AnswerFloat, "3"},
		{"exponent", `1e2`, AnswerFloat, "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Answer
			require.NoError(t, json.Unmarshal([]byte(tt.in), &a))
			assert.Equal(t, tt.kind, a.Kind())
			assert.Equal(t, tt.text, a.String())
		})
	}
}

func TestAnswerUnmarshalRejectsOtherTypes(t *testing.T) {
	for _, in := range []string{`null`, `true`, `[1]`, `{"a":1}`} {
		var a Answer
		assert.ErrorIs(t, json.Unmarshal([]byte(in), &a), ErrInvalidAnswer, in)
	}
}

func TestDecodeAnswerRoundTrip(t *testing.T) {
	for _, a := range []Answer{StringAnswer("yes"), IntAnswer(7), FloatAnswer(2)} {
		raw, err := json.Marshal(a)
		require.NoError(t, err)

		got, err := DecodeAnswer(a.Kind(), raw)
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}

	_, err := DecodeAnswer("bool", json.RawMessage(`true`))
	assert.Error(t, err)
}

func TestSessionComplete(t *testing.T) {
	s := Session{Status: StatusActive, AnsweredIDs: []string{"q1"}}
	assert.True(t, s.HasAnswered("q1"))
	assert.False(t, s.HasAnswered("q2"))

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.Complete(ReasonNoMoreQuestions, at)
	assert.Equal(t, StatusCompleted, s.Status)
	assert.Equal(t, ReasonNoMoreQuestions, s.Reason)
	require.NotNil(t, s.CompletedAt)
	assert.Equal(t, at, *s.CompletedAt)
}

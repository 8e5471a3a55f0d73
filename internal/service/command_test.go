package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/entity"
)

func TestTextInterpreter_Interpret(t *testing.T) {
	interpreter := NewTextInterpreter()

	tests := []struct {
		name     string
		text     string
		expected entity.Action
	}{
		{
			name:     "Bare position",
			text:     "b2",
			expected: entity.Action{Kind: entity.ActionPlace, Player: entity.PlayerX, To: "b2"},
		},
		{
			name:     "Sentence with one position",
			text:     "Put it on C3 please",
			expected: entity.Action{Kind: entity.ActionPlace, Player: entity.PlayerX, To: "c3"},
		},
		{
			name:     "Arrow move",
			text:     "a1->b2",
			expected: entity.Action{Kind: entity.ActionMove, Player: entity.PlayerX, From: "a1", To: "b2"},
		},
		{
			name:     "Spoken move",
			text:     "move a1 to c3",
			expected: entity.Action{Kind: entity.ActionMove, Player: entity.PlayerX, From: "a1", To: "c3"},
		},
		{
			name:     "From to",
			text:     "from b1 to b3",
			expected: entity.Action{Kind: entity.ActionMove, Player: entity.PlayerX, From: "b1", To: "b3"},
		},
		{
			name:     "Chinese move",
			text:     "把a1移動到b2",
			expected: entity.Action{Kind: entity.ActionMove, Player: entity.PlayerX, From: "a1", To: "b2"},
		},
		{
			name:     "English direction",
			text:     "top right",
			expected: entity.Action{Kind: entity.ActionPlace, Player: entity.PlayerX, To: "c1"},
		},
		{
			name:     "Compound direction is not read as center",
			text:     "the center left square",
			expected: entity.Action{Kind: entity.ActionPlace, Player: entity.PlayerX, To: "a2"},
		},
		{
			name:     "Chinese direction",
			text:     "放在右下",
			expected: entity.Action{Kind: entity.ActionPlace, Player: entity.PlayerX, To: "c3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, err := interpreter.Interpret(tt.text, "x")

			require.NoError(t, err)
			assert.Equal(t, tt.expected, action)
		})
	}

	t.Run("Two positions without a move cue are not understood", func(t *testing.T) {
		_, err := interpreter.Interpret("a1 b2", "X")

		require.ErrorIs(t, err, apperror.ErrUnrecognizedCommand)
	})

	t.Run("Gibberish is not understood", func(t *testing.T) {
		_, err := interpreter.Interpret("make me a sandwich", "O")

		require.ErrorIs(t, err, apperror.ErrUnrecognizedCommand)
		assert.True(t, apperror.IsMalformed(err))
	})

	t.Run("Unknown player is rejected", func(t *testing.T) {
		_, err := interpreter.Interpret("b2", "Z")

		require.ErrorIs(t, err, apperror.ErrInvalidPlayer)
	})
}

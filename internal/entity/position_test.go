package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/apperror"
)

func TestParsePosition(t *testing.T) {
	t.Run("Every label maps to its row-major index", func(t *testing.T) {
		labels := []string{"a1", "b1", "c1", "a2", "b2", "c2", "a3", "b3", "c3"}

		for i, label := range labels {
			pos, err := ParsePosition(label)

			require.NoError(t, err)
			assert.Equal(t, Position(i), pos)
			assert.Equal(t, label, pos.String())
		}
	})

	t.Run("Upper case is accepted", func(t *testing.T) {
		pos, err := ParsePosition("B3")

		require.NoError(t, err)
		assert.Equal(t, Position(7), pos)
	})

	t.Run("Labels that change length when lower-cased are invalid", func(t *testing.T) {
		// Given: "İ" is two bytes but lower-cases to the one-byte "i"
		for _, label := range []string{"İ", "İ1", "a\u0130"} {
			// When: it is parsed
			var err error
			require.NotPanics(t, func() { _, err = ParsePosition(label) }, "label %q", label)

			// Then: it is rejected like any other bad label
			require.ErrorIs(t, err, apperror.ErrInvalidPosition, "label %q", label)
		}
	})

	t.Run("Anything else is invalid", func(t *testing.T) {
		for _, label := range []string{"", "b", "b0", "b4", "d2", "2b", "b22", "é1", "İ", "İ1", "A\u0131"} {
			_, err := ParsePosition(label)

			assert.ErrorIs(t, err, apperror.ErrInvalidPosition, "label %q", label)
		}
	})
}

func TestPosition_Text(t *testing.T) {
	t.Run("JSON uses labels", func(t *testing.T) {
		data, err := json.Marshal([]Position{0, 4, 8})
		require.NoError(t, err)
		assert.JSONEq(t, `["a1","b2","c3"]`, string(data))

		var decoded []Position
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, []Position{0, 4, 8}, decoded)
	})

	t.Run("Out of range positions do not marshal", func(t *testing.T) {
		_, err := json.Marshal(Position(9))

		require.Error(t, err)
		assert.Equal(t, "?", Position(-1).String())
	})
}

package service

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/entity"
)

func TestRandomStrategy_Choose(t *testing.T) {
	t.Run("Places on an empty cell in the placement phase", func(t *testing.T) {
		// Given: a game where X holds b2 and O is to move
		game := entity.NewGame("123")
		require.NoError(t, game.Place(entity.PlayerX, "b2"))
		strategy := NewRandomStrategy(rand.NewPCG(1, 2))

		// When: the bot chooses for O
		action, err := strategy.Choose(game, entity.PlayerO)

		// Then: it is a legal place that the engine accepts
		require.NoError(t, err)
		assert.Equal(t, entity.ActionPlace, action.Kind)
		assert.NotEqual(t, "b2", action.To)
		require.NoError(t, action.Apply(game))
	})

	t.Run("Moves once at the cap", func(t *testing.T) {
		// Given: both players at four pieces, only c3 free
		game := entity.NewGame("123")
		for _, action := range []entity.Action{
			{Kind: entity.ActionPlace, Player: entity.PlayerX, To: "a1"},
			{Kind: entity.ActionPlace, Player: entity.PlayerO, To: "b1"},
			{Kind: entity.ActionPlace, Player: entity.PlayerX, To: "c1"},
			{Kind: entity.ActionPlace, Player: entity.PlayerO, To: "b2"},
			{Kind: entity.ActionPlace, Player: entity.PlayerX, To: "a2"},
			{Kind: entity.ActionPlace, Player: entity.PlayerO, To: "c2"},
			{Kind: entity.ActionPlace, Player: entity.PlayerX, To: "b3"},
			{Kind: entity.ActionPlace, Player: entity.PlayerO, To: "a3"},
		} {
			require.NoError(t, action.Apply(game))
		}

		// When: the bot chooses for X
		action, err := NewRandomStrategy(nil).Choose(game, entity.PlayerX)

		// Then: it moves one of X's pieces into c3
		require.NoError(t, err)
		assert.Equal(t, entity.ActionMove, action.Kind)
		assert.Equal(t, "c3", action.To)
		assert.Contains(t, []string{"a1", "c1", "a2", "b3"}, action.From)
		require.NoError(t, action.Apply(game))
	})

	t.Run("Covers every legal option over many draws", func(t *testing.T) {
		game := entity.NewGame("123")
		strategy := NewRandomStrategy(rand.NewPCG(7, 7))

		seen := map[string]bool{}
		for range 500 {
			action, err := strategy.Choose(game, entity.PlayerX)
			require.NoError(t, err)
			seen[action.To] = true
		}

		assert.Len(t, seen, entity.BoardSize)
	})

	t.Run("Returns ErrNoLegalMoves when it is not the bot's turn", func(t *testing.T) {
		game := entity.NewGame("123")

		_, err := NewRandomStrategy(nil).Choose(game, entity.PlayerO)

		require.ErrorIs(t, err, apperror.ErrNoLegalMoves)
	})
}

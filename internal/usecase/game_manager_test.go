package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/entity"
	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/repository"
	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/service"
	mockedUseCase "github.com/rocketscienceinc/fourpiece-tictactoe/mocks/usecase"
)

var errRedisDown = errors.New("redis down")

func newTestManager(t *testing.T, settings Settings) (*GameManager, *mockedUseCase.MockEventPublisher) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	manager := NewGameManager(
		logger,
		repository.NewMemoryGameRepository(),
		service.NewRandomStrategy(rand.NewPCG(1, 2)),
		service.NewTextInterpreter(),
		settings,
	)

	publisher := mockedUseCase.NewMockEventPublisher(t)
	manager.AddPublisher(publisher)

	return manager, publisher
}

func TestGameManager_CreateGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates a fresh game with a new ID", func(t *testing.T) {
		// Given: a manager with a draw ceiling of 10
		manager, publisher := newTestManager(t, Settings{GameOptions: []entity.Option{entity.WithMaxPlies(10)}})

		publisher.EXPECT().
			Publish(mock.Anything, mock.MatchedBy(func(event entity.GameEvent) bool {
				return event.Kind == entity.EventCreate
			})).
			Return(nil).
			Once()

		// When: two games are created
		first, err := manager.CreateGame(ctx)
		require.NoError(t, err)

		publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil).Once()
		second, err := manager.CreateGame(ctx)
		require.NoError(t, err)

		// Then: both are empty, independent and use the configured ceiling
		assert.True(t, first.Success)
		assert.NotEmpty(t, first.Game.ID)
		assert.NotEqual(t, first.Game.ID, second.Game.ID)
		assert.Equal(t, 10, first.Game.MaxPlies)
		assert.Equal(t, entity.PlayerX, first.Game.Turn)

		stored, err := manager.GetGame(ctx, first.Game.ID)
		require.NoError(t, err)
		assert.Equal(t, first.Game, stored)
	})

	t.Run("Storage failure is an error", func(t *testing.T) {
		repo := mockedUseCase.NewMockgameRepo(t)
		manager := NewGameManager(slog.New(slog.NewTextHandler(io.Discard, nil)), repo, nil, nil, Settings{})

		repo.EXPECT().
			CreateOrUpdate(mock.Anything, mock.AnythingOfType("*entity.Game")).
			Return(errRedisDown).
			Once()

		outcome, err := manager.CreateGame(ctx)

		require.ErrorIs(t, err, errRedisDown)
		assert.Nil(t, outcome)
	})
}

func TestGameManager_Act(t *testing.T) {
	ctx := context.Background()

	t.Run("Accepted action is stored and published", func(t *testing.T) {
		manager, publisher := newTestManager(t, Settings{})

		_, err := manager.EnsureGame(ctx, "g1")
		require.NoError(t, err)

		publisher.EXPECT().
			Publish(mock.Anything, mock.MatchedBy(func(event entity.GameEvent) bool {
				return event.GameID == "g1" && event.Kind == entity.EventAction && event.To == "b2"
			})).
			Return(nil).
			Once()

		// When: X places on b2
		outcome, err := manager.Act(ctx, "g1", entity.Action{Kind: entity.ActionPlace, Player: entity.PlayerX, To: "b2"})

		// Then: the outcome reports success and O is to move
		require.NoError(t, err)
		assert.True(t, outcome.Success)
		assert.Equal(t, "X places b2", outcome.Message)
		assert.Equal(t, entity.PlayerX, outcome.Game.Board[4])
		assert.Equal(t, entity.PlayerO, outcome.Game.Turn)
	})

	t.Run("Rule rejection is an unsuccessful outcome", func(t *testing.T) {
		manager, _ := newTestManager(t, Settings{})

		_, err := manager.EnsureGame(ctx, "g1")
		require.NoError(t, err)

		// When: O plays first
		outcome, err := manager.Act(ctx, "g1", entity.Action{Kind: entity.ActionPlace, Player: entity.PlayerO, To: "b2"})

		// Then: no error, the message is the bare rule text and nothing changed
		require.NoError(t, err)
		assert.False(t, outcome.Success)
		assert.Equal(t, "not your turn", outcome.Message)
		assert.Equal(t, 0, outcome.Game.Plies)
	})

	t.Run("Unknown game", func(t *testing.T) {
		manager, _ := newTestManager(t, Settings{})

		_, err := manager.Act(ctx, "nope", entity.Action{Kind: entity.ActionPlace, Player: entity.PlayerX, To: "b2"})

		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})

	t.Run("Publish failure does not undo the action", func(t *testing.T) {
		manager, publisher := newTestManager(t, Settings{})

		_, err := manager.EnsureGame(ctx, "g1")
		require.NoError(t, err)

		publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(errRedisDown).Once()

		outcome, err := manager.Act(ctx, "g1", entity.Action{Kind: entity.ActionPlace, Player: entity.PlayerX, To: "a1"})

		require.NoError(t, err)
		assert.True(t, outcome.Success)
	})

	t.Run("Winning action is described", func(t *testing.T) {
		manager, publisher := newTestManager(t, Settings{})
		publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil)

		_, err := manager.EnsureGame(ctx, "g1")
		require.NoError(t, err)

		// Given: X holds a1 and b1, O holds a2 and b2
		for _, action := range []entity.Action{
			{Kind: entity.ActionPlace, Player: entity.PlayerX, To: "a1"},
			{Kind: entity.ActionPlace, Player: entity.PlayerO, To: "a2"},
			{Kind: entity.ActionPlace, Player: entity.PlayerX, To: "b1"},
			{Kind: entity.ActionPlace, Player: entity.PlayerO, To: "b2"},
		} {
			outcome, err := manager.Act(ctx, "g1", action)
			require.NoError(t, err)
			require.True(t, outcome.Success)
		}

		// When: X completes the top row
		outcome, err := manager.Act(ctx, "g1", entity.Action{Kind: entity.ActionPlace, Player: entity.PlayerX, To: "c1"})

		// Then: X wins and further actions are rejected
		require.NoError(t, err)
		assert.Equal(t, "X places c1, X wins", outcome.Message)
		assert.Equal(t, entity.PlayerX, outcome.Game.Winner)

		outcome, err = manager.Act(ctx, "g1", entity.Action{Kind: entity.ActionPlace, Player: entity.PlayerO, To: "c3"})
		require.NoError(t, err)
		assert.False(t, outcome.Success)
		assert.Equal(t, "game already ended", outcome.Message)
	})

	t.Run("Bot answers when auto reply is on", func(t *testing.T) {
		manager, publisher := newTestManager(t, Settings{AutoReply: true})
		publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil).Times(2)

		_, err := manager.EnsureGame(ctx, "g1")
		require.NoError(t, err)

		// When: X places
		outcome, err := manager.Act(ctx, "g1", entity.Action{Kind: entity.ActionPlace, Player: entity.PlayerX, To: "b2"})

		// Then: O has answered and it is X's turn again
		require.NoError(t, err)
		assert.True(t, outcome.Success)
		assert.Equal(t, 2, outcome.Game.Plies)
		assert.Equal(t, entity.PlayerX, outcome.Game.Turn)
		assert.Len(t, outcome.Game.Pieces[entity.PlayerO], 1)
		assert.Contains(t, outcome.Message, "X places b2; O places")
	})

	t.Run("Failed bot reply keeps the stored action", func(t *testing.T) {
		repo := mockedUseCase.NewMockgameRepo(t)
		manager := NewGameManager(
			slog.New(slog.NewTextHandler(io.Discard, nil)),
			repo,
			service.NewRandomStrategy(rand.NewPCG(1, 2)),
			nil,
			Settings{AutoReply: true},
		)

		// Given: the player's update succeeds and the bot's update fails
		repo.EXPECT().
			Update(mock.Anything, "g1", mock.Anything).
			RunAndReturn(func(_ context.Context, _ string, fn repository.UpdateFunc) (*entity.Game, error) {
				game := entity.NewGame("g1")
				return game, fn(game)
			}).
			Once()
		repo.EXPECT().
			Update(mock.Anything, "g1", mock.Anything).
			Return((*entity.Game)(nil), errRedisDown).
			Once()

		// When: X places with auto reply on
		outcome, err := manager.Act(ctx, "g1", entity.Action{Kind: entity.ActionPlace, Player: entity.PlayerX, To: "b2"})

		// Then: the caller still learns that X's piece landed
		require.NoError(t, err)
		assert.True(t, outcome.Success)
		assert.Equal(t, "X places b2", outcome.Message)
		assert.Equal(t, entity.PlayerX, outcome.Game.Board[4])
		assert.Equal(t, entity.PlayerO, outcome.Game.Turn)
	})
}

func TestGameManager_BotTurn(t *testing.T) {
	ctx := context.Background()

	t.Run("Bot plays a legal action", func(t *testing.T) {
		manager, publisher := newTestManager(t, Settings{})
		publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil).Once()

		_, err := manager.EnsureGame(ctx, "g1")
		require.NoError(t, err)

		outcome, err := manager.BotTurn(ctx, "g1", "x")

		require.NoError(t, err)
		assert.True(t, outcome.Success)
		assert.Len(t, outcome.Game.Pieces[entity.PlayerX], 1)
		require.NoError(t, outcome.Game.CheckInvariants())
	})

	t.Run("Bot waits for its turn", func(t *testing.T) {
		manager, _ := newTestManager(t, Settings{})

		_, err := manager.EnsureGame(ctx, "g1")
		require.NoError(t, err)

		outcome, err := manager.BotTurn(ctx, "g1", entity.PlayerO)

		require.NoError(t, err)
		assert.False(t, outcome.Success)
		assert.Equal(t, "not your turn", outcome.Message)
	})

	t.Run("Bot moves at the cap", func(t *testing.T) {
		manager, publisher := newTestManager(t, Settings{})
		publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil)

		_, err := manager.EnsureGame(ctx, "g1")
		require.NoError(t, err)

		// Given: X holds a1 c1 a2 b3, O holds b1 b2 c2 a3 and only c3 is free
		for _, label := range []string{"a1", "b1", "c1", "b2", "a2", "c2", "b3", "a3"} {
			game, err := manager.GetGame(ctx, "g1")
			require.NoError(t, err)

			outcome, err := manager.Act(ctx, "g1", entity.Action{Kind: entity.ActionPlace, Player: game.Turn, To: label})
			require.NoError(t, err)
			require.True(t, outcome.Success)
		}

		// When: X's bot plays
		outcome, err := manager.BotTurn(ctx, "g1", entity.PlayerX)

		// Then: one of X's pieces went to c3 and X still has four pieces
		require.NoError(t, err)
		assert.True(t, outcome.Success)
		assert.Contains(t, outcome.Message, "X moves")
		assert.Equal(t, entity.PlayerX, outcome.Game.Board[8])
		assert.Len(t, outcome.Game.Pieces[entity.PlayerX], entity.PieceCap)
	})

	t.Run("Unknown player symbol is malformed", func(t *testing.T) {
		manager, _ := newTestManager(t, Settings{})

		_, err := manager.BotTurn(ctx, "g1", "Z")

		require.ErrorIs(t, err, apperror.ErrInvalidPlayer)
	})
}

func TestGameManager_Command(t *testing.T) {
	ctx := context.Background()

	t.Run("Text is interpreted and applied", func(t *testing.T) {
		manager, publisher := newTestManager(t, Settings{})
		publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil).Once()

		_, err := manager.EnsureGame(ctx, "g1")
		require.NoError(t, err)

		outcome, err := manager.Command(ctx, "g1", "X", "top right")

		require.NoError(t, err)
		assert.True(t, outcome.Success)
		assert.Equal(t, entity.PlayerX, outcome.Game.Board[2])
	})

	t.Run("Unrecognised text is malformed", func(t *testing.T) {
		manager, _ := newTestManager(t, Settings{})

		_, err := manager.EnsureGame(ctx, "g1")
		require.NoError(t, err)

		_, err = manager.Command(ctx, "g1", "X", "hello there")

		require.ErrorIs(t, err, apperror.ErrUnrecognizedCommand)
		assert.True(t, apperror.IsMalformed(err))
	})
}

func TestGameManager_Reset(t *testing.T) {
	ctx := context.Background()

	// Given: a game with pieces on the board
	manager, publisher := newTestManager(t, Settings{})
	publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil)

	_, err := manager.EnsureGame(ctx, DefaultGameID)
	require.NoError(t, err)

	_, err = manager.Act(ctx, DefaultGameID, entity.Action{Kind: entity.ActionPlace, Player: entity.PlayerX, To: "a1"})
	require.NoError(t, err)

	// When: the game is reset
	outcome, err := manager.Reset(ctx, DefaultGameID)

	// Then: it is back at the start
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, entity.NewGame(DefaultGameID), outcome.Game)

	_, err = manager.Reset(ctx, "nope")
	require.ErrorIs(t, err, apperror.ErrGameNotFound)
}

func TestGameManager_EnsureGame(t *testing.T) {
	ctx := context.Background()

	manager, publisher := newTestManager(t, Settings{})
	publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil).Once()

	_, err := manager.EnsureGame(ctx, DefaultGameID)
	require.NoError(t, err)

	_, err = manager.Act(ctx, DefaultGameID, entity.Action{Kind: entity.ActionPlace, Player: entity.PlayerX, To: "a1"})
	require.NoError(t, err)

	// When: the default game is requested again
	game, err := manager.EnsureGame(ctx, DefaultGameID)

	// Then: the played game is kept
	require.NoError(t, err)
	assert.Equal(t, 1, game.Plies)

	require.NoError(t, manager.DeleteGame(ctx, DefaultGameID))
	_, err = manager.GetGame(ctx, DefaultGameID)
	require.ErrorIs(t, err, apperror.ErrGameNotFound)
}

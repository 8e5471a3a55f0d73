package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/entity"
	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/repository"
)

// DefaultGameID is the game served by the single-table routes.
const DefaultGameID = "default"

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	GetOrCreate(ctx context.Context, game *entity.Game) (*entity.Game, error)
	Update(ctx context.Context, id string, fn repository.UpdateFunc) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type botStrategy interface {
	Choose(game *entity.Game, mark string) (entity.Action, error)
}

type commandInterpreter interface {
	Interpret(text, player string) (entity.Action, error)
}

// EventPublisher receives every accepted change after it has been stored.
type EventPublisher interface {
	Publish(ctx context.Context, event entity.GameEvent) error
}

// Outcome is the result of one request against a game. A rule rejection is an outcome with
// Success false, not an error.
type Outcome struct {
	Success bool
	Message string
	Game    *entity.Game
}

type Settings struct {
	GameOptions []entity.Option
	// AutoReply makes the bot answer every accepted player action with the opponent's action.
	AutoReply bool
}

type GameManager struct {
	logger *slog.Logger

	gameRepo    gameRepo
	bot         botStrategy
	interpreter commandInterpreter
	settings    Settings

	mu         sync.RWMutex
	publishers []EventPublisher
}

func NewGameManager(
	logger *slog.Logger,
	gameRepo gameRepo,
	bot botStrategy,
	interpreter commandInterpreter,
	settings Settings,
) *GameManager {
	return &GameManager{
		logger: logger,

		gameRepo:    gameRepo,
		bot:         bot,
		interpreter: interpreter,
		settings:    settings,
	}
}

func (that *GameManager) AddPublisher(publisher EventPublisher) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.publishers = append(that.publishers, publisher)
}

func (that *GameManager) CreateGame(ctx context.Context) (*Outcome, error) {
	log := that.logger.With("method", "CreateGame")

	game := that.newGame(uuid.NewString())
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	log.Info("game created", "game_id", game.ID)
	that.publish(ctx, log, entity.NewGameEvent(game, entity.EventCreate))

	return &Outcome{Success: true, Message: "game created", Game: game}, nil
}

func (that *GameManager) GetGame(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// EnsureGame returns the game with the given ID, creating a fresh one when none exists.
func (that *GameManager) EnsureGame(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetOrCreate(ctx, that.newGame(id))
	if err != nil {
		return nil, fmt.Errorf("failed to get or create game: %w", err)
	}

	return game, nil
}

func (that *GameManager) DeleteGame(ctx context.Context, id string) error {
	if err := that.gameRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	that.logger.Info("game deleted", "method", "DeleteGame", "game_id", id)

	return nil
}

// Act applies an already-interpreted player action.
func (that *GameManager) Act(ctx context.Context, id string, action entity.Action) (*Outcome, error) {
	log := that.logger.With("method", "Act", "game_id", id)

	game, err := that.gameRepo.Update(ctx, id, action.Apply)
	if err != nil {
		return that.rejected(log, game, err)
	}

	log.Debug("action accepted", "action", action.String())
	that.publish(ctx, log, entity.NewActionEvent(game, action))

	outcome := &Outcome{Success: true, Message: describe(game, action.String()), Game: game}

	if that.settings.AutoReply && game.IsOngoing() {
		// The player's action is already stored; report it even if the reply fails.
		reply, err := that.BotTurn(ctx, id, game.Turn)
		if err != nil {
			log.Error("bot reply failed", "error", err)
		} else if reply.Success {
			outcome.Message = action.String() + "; " + reply.Message
			outcome.Game = reply.Game
		}
	}

	return outcome, nil
}

// BotTurn lets the bot strategy play one action for player.
func (that *GameManager) BotTurn(ctx context.Context, id, player string) (*Outcome, error) {
	log := that.logger.With("method", "BotTurn", "game_id", id)

	mark, err := entity.ParseMark(player)
	if err != nil {
		return nil, err
	}

	var chosen entity.Action

	game, err := that.gameRepo.Update(ctx, id, func(game *entity.Game) error {
		if game.IsFinished() {
			return apperror.ErrGameFinished
		}

		if game.Turn != mark {
			return apperror.ErrNotYourTurn
		}

		action, err := that.bot.Choose(game, mark)
		if err != nil {
			return fmt.Errorf("bot could not choose: %w", err)
		}

		chosen = action

		return action.Apply(game)
	})
	if err != nil {
		return that.rejected(log, game, err)
	}

	log.Debug("bot action accepted", "action", chosen.String())
	that.publish(ctx, log, entity.NewActionEvent(game, chosen))

	return &Outcome{Success: true, Message: describe(game, chosen.String()), Game: game}, nil
}

// Command interprets free text as an action of player and applies it.
func (that *GameManager) Command(ctx context.Context, id, player, text string) (*Outcome, error) {
	action, err := that.interpreter.Interpret(text, player)
	if err != nil {
		return nil, fmt.Errorf("failed to interpret command: %w", err)
	}

	return that.Act(ctx, id, action)
}

func (that *GameManager) Reset(ctx context.Context, id string) (*Outcome, error) {
	log := that.logger.With("method", "Reset", "game_id", id)

	game, err := that.gameRepo.Update(ctx, id, func(game *entity.Game) error {
		game.Reset()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reset game: %w", err)
	}

	log.Info("game reset")
	that.publish(ctx, log, entity.NewGameEvent(game, entity.EventReset))

	return &Outcome{Success: true, Message: "game reset", Game: game}, nil
}

func (that *GameManager) newGame(id string) *entity.Game {
	return entity.NewGame(id, that.settings.GameOptions...)
}

func (that *GameManager) rejected(log *slog.Logger, game *entity.Game, err error) (*Outcome, error) {
	if game != nil && (apperror.IsRuleViolation(err) || errors.Is(err, apperror.ErrNoLegalMoves)) {
		log.Debug("action rejected", "reason", err)

		if errors.Is(err, apperror.ErrNoLegalMoves) {
			return &Outcome{Success: false, Message: apperror.ErrNoLegalMoves.Error(), Game: game}, nil
		}

		return &Outcome{Success: false, Message: apperror.Message(err), Game: game}, nil
	}

	return nil, fmt.Errorf("failed to update game: %w", err)
}

func (that *GameManager) publish(ctx context.Context, log *slog.Logger, event entity.GameEvent) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	for _, publisher := range that.publishers {
		if err := publisher.Publish(ctx, event); err != nil {
			log.Error("failed to publish game event", "error", err)
		}
	}
}

func describe(game *entity.Game, base string) string {
	switch {
	case game.IsDraw():
		return base + ", draw"
	case game.IsFinished():
		return fmt.Sprintf("%s, %s wins", base, game.Winner)
	default:
		return base
	}
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/entity"
)

const (
	gameKeyPrefix = "game:"
	maxTxRetries  = 10
)

var ErrTxConflict = errors.New("too many concurrent updates")

// stringGetter is satisfied by both *redis.Client and *redis.Tx.
type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// UpdateFunc mutates a game; returning an error discards the mutation.
type UpdateFunc func(game *entity.Game) error

// GameRepository maps game IDs to game state. Update is the only way to change a stored game and
// runs fn under mutual exclusion per game.
type GameRepository interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	GetOrCreate(ctx context.Context, game *entity.Game) (*entity.Game, error)
	Update(ctx context.Context, id string, fn UpdateFunc) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type dbGame struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGameRepository stores games as JSON under "game:<id>"; keys expire ttl after the last write
// (zero keeps them forever).
func NewGameRepository(client *redis.Client, ttl time.Duration) GameRepository {
	return &dbGame{
		client: client,
		ttl:    ttl,
	}
}

func (that *dbGame) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	if err = that.client.Set(ctx, gameKey(game.ID), gameJSON, that.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}

	return nil
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	return that.get(ctx, that.client, id)
}

// GetOrCreate stores game unless its ID is taken and returns whichever game ends up stored.
func (that *dbGame) GetOrCreate(ctx context.Context, game *entity.Game) (*entity.Game, error) {
	gameJSON, err := json.Marshal(game)
	if err != nil {
		return nil, fmt.Errorf("could not marshal game: %w", err)
	}

	created, err := that.client.SetNX(ctx, gameKey(game.ID), gameJSON, that.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to set game: %w", err)
	}

	if created {
		return game.Clone(), nil
	}

	return that.get(ctx, that.client, game.ID)
}

func (that *dbGame) Update(ctx context.Context, id string, fn UpdateFunc) (*entity.Game, error) {
	key := gameKey(id)

	var result *entity.Game

	txf := func(tx *redis.Tx) error {
		current, err := that.get(ctx, tx, id)
		if err != nil {
			return err
		}

		working := current.Clone()
		if err = fn(working); err != nil {
			result = current
			return err
		}

		gameJSON, err := json.Marshal(working)
		if err != nil {
			return fmt.Errorf("could not marshal game: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, gameJSON, that.ttl)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to set game: %w", err)
		}

		result = working

		return nil
	}

	for range maxTxRetries {
		err := that.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		return result, err
	}

	return nil, fmt.Errorf("%w: game %s", ErrTxConflict, id)
}

func (that *dbGame) DeleteByID(ctx context.Context, id string) error {
	deleted, err := that.client.Del(ctx, gameKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete game by ID: %w", err)
	}

	if deleted == 0 {
		return apperror.ErrGameNotFound
	}

	return nil
}

func (that *dbGame) get(ctx context.Context, client stringGetter, id string) (*entity.Game, error) {
	response, err := client.Get(ctx, gameKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrGameNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	var existingGame entity.Game
	if err = json.Unmarshal(response, &existingGame); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &existingGame, nil
}

func gameKey(id string) string {
	return gameKeyPrefix + id
}

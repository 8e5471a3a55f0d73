package repository

import (
	"context"
	"sync"

	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/entity"
)

type memoryEntry struct {
	mu   sync.Mutex
	game *entity.Game
}

type memoryGame struct {
	mu    sync.RWMutex
	games map[string]*memoryEntry
}

// NewMemoryGameRepository keeps games in process memory, one lock per game.
func NewMemoryGameRepository() GameRepository {
	return &memoryGame{
		games: make(map[string]*memoryEntry),
	}
}

func (that *memoryGame) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	that.mu.Lock()
	entry, ok := that.games[game.ID]
	if !ok {
		that.games[game.ID] = &memoryEntry{game: game.Clone()}
		that.mu.Unlock()
		return nil
	}
	that.mu.Unlock()

	entry.mu.Lock()
	entry.game = game.Clone()
	entry.mu.Unlock()

	return nil
}

func (that *memoryGame) GetByID(_ context.Context, id string) (*entity.Game, error) {
	entry, err := that.entry(id)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	return entry.game.Clone(), nil
}

func (that *memoryGame) GetOrCreate(_ context.Context, game *entity.Game) (*entity.Game, error) {
	that.mu.Lock()
	entry, ok := that.games[game.ID]
	if !ok {
		entry = &memoryEntry{game: game.Clone()}
		that.games[game.ID] = entry
	}
	that.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()

	return entry.game.Clone(), nil
}

func (that *memoryGame) Update(_ context.Context, id string, fn UpdateFunc) (*entity.Game, error) {
	entry, err := that.entry(id)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	working := entry.game.Clone()
	if err = fn(working); err != nil {
		return entry.game.Clone(), err
	}

	entry.game = working

	return working.Clone(), nil
}

func (that *memoryGame) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.games[id]; !ok {
		return apperror.ErrGameNotFound
	}

	delete(that.games, id)

	return nil
}

func (that *memoryGame) entry(id string) (*memoryEntry, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	entry, ok := that.games[id]
	if !ok {
		return nil, apperror.ErrGameNotFound
	}

	return entry, nil
}

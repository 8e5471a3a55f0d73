package service

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/entity"
)

// Strategy picks the next action for mark. It must not mutate the game.
type Strategy interface {
	Choose(game *entity.Game, mark string) (entity.Action, error)
}

type randomStrategy struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomStrategy returns a Strategy choosing uniformly among legal actions.
// A nil source uses the global generator.
func NewRandomStrategy(src rand.Source) Strategy {
	strategy := &randomStrategy{}
	if src != nil {
		strategy.rnd = rand.New(src) //nolint: gosec // it's ok
	}

	return strategy
}

func (that *randomStrategy) Choose(game *entity.Game, mark string) (entity.Action, error) {
	actions := game.LegalActions(mark)
	if len(actions) == 0 {
		return entity.Action{}, fmt.Errorf("%w for %s", apperror.ErrNoLegalMoves, mark)
	}

	return actions[that.intN(len(actions))], nil
}

func (that *randomStrategy) intN(n int) int {
	if that.rnd == nil {
		return rand.IntN(n) //nolint: gosec // it's ok
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	return that.rnd.IntN(n)
}

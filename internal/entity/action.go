package entity

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/apperror"
)

const (
	ActionPlace = "place"
	ActionMove  = "move"
)

// Action is one already-interpreted player intent. To is the placed cell or the move destination.
type Action struct {
	Kind   string `json:"action"`
	Player string `json:"player"`
	From   string `json:"from_pos,omitempty"`
	To     string `json:"pos"`
}

// NewAction normalises the action name and player symbol and checks that the fields the action
// needs are present. Position labels are left for the engine to judge.
func NewAction(kind, player, from, to string) (Action, error) {
	mark, err := ParseMark(player)
	if err != nil {
		return Action{}, err
	}

	action := Action{Kind: strings.ToLower(strings.TrimSpace(kind)), Player: mark, From: from, To: to}

	switch action.Kind {
	case ActionPlace:
		if to == "" {
			return Action{}, fmt.Errorf("%w: place requires pos", apperror.ErrMalformedRequest)
		}
		action.From = ""
	case ActionMove:
		if from == "" || to == "" {
			return Action{}, fmt.Errorf("%w: move requires from_pos and pos", apperror.ErrMalformedRequest)
		}
	default:
		return Action{}, fmt.Errorf("%w: %q", apperror.ErrUnknownAction, kind)
	}

	return action, nil
}

// Apply runs the action against the game.
func (that Action) Apply(game *Game) error {
	switch that.Kind {
	case ActionPlace:
		return game.Place(that.Player, that.To)
	case ActionMove:
		return game.Move(that.Player, that.From, that.To)
	default:
		return fmt.Errorf("%w: %q", apperror.ErrUnknownAction, that.Kind)
	}
}

func (that Action) String() string {
	if that.Kind == ActionMove {
		return fmt.Sprintf("%s moves %s -> %s", that.Player, that.From, that.To)
	}
	return fmt.Sprintf("%s places %s", that.Player, that.To)
}

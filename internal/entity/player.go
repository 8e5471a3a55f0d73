package entity

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/apperror"
)

const (
	PlayerX   = "X"
	PlayerO   = "O"
	PlayerTie = "-"

	EmptyCell = ""
)

// ParseMark normalises a player symbol; only X and O are accepted.
func ParseMark(symbol string) (string, error) {
	switch mark := strings.ToUpper(strings.TrimSpace(symbol)); mark {
	case PlayerX, PlayerO:
		return mark, nil
	default:
		return "", fmt.Errorf("%w: %q", apperror.ErrInvalidPlayer, symbol)
	}
}

func Opponent(mark string) string {
	if mark == PlayerX {
		return PlayerO
	}
	return PlayerX
}

package entity

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/apperror"
)

const BoardSize = 9

const (
	columnLabels = "abc"
	rowLabels    = "123"
)

// Position is a cell index in 0..8, row-major: a1 b1 c1 / a2 b2 c2 / a3 b3 c3.
type Position int

// ParsePosition converts a label such as "b2" (column letter, row digit, case-insensitive) into a Position.
func ParsePosition(label string) (Position, error) {
	if len(label) != 2 {
		return 0, fmt.Errorf("%w: %q", apperror.ErrInvalidPosition, label)
	}

	column := strings.IndexByte(columnLabels, asciiLower(label[0]))
	row := strings.IndexByte(rowLabels, label[1])
	if column < 0 || row < 0 {
		return 0, fmt.Errorf("%w: %q", apperror.ErrInvalidPosition, label)
	}

	return Position(row*3 + column), nil
}

// asciiLower folds only A-Z; label bytes are compared one by one, never as runes.
func asciiLower(b byte) byte {
	if 'A' <= b && b <= 'Z' {
		return b + 'a' - 'A'
	}
	return b
}

func (that Position) Valid() bool {
	return that >= 0 && that < BoardSize
}

func (that Position) String() string {
	if !that.Valid() {
		return "?"
	}

	return string([]byte{columnLabels[that%3], rowLabels[that/3]})
}

func (that Position) MarshalText() ([]byte, error) {
	if !that.Valid() {
		return nil, fmt.Errorf("%w: index %d", apperror.ErrInvalidPosition, int(that))
	}

	return []byte(that.String()), nil
}

func (that *Position) UnmarshalText(text []byte) error {
	pos, err := ParsePosition(string(text))
	if err != nil {
		return err
	}

	*that = pos

	return nil
}

// AllPositions returns every cell in board order.
func AllPositions() []Position {
	positions := make([]Position, 0, BoardSize)
	for i := range BoardSize {
		positions = append(positions, Position(i))
	}

	return positions
}

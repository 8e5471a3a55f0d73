package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/entity"
)

// CommandInterpreter turns free-form text (typed, or transcribed from speech) into an engine action.
type CommandInterpreter interface {
	Interpret(text, player string) (entity.Action, error)
}

var positionPattern = regexp.MustCompile(`\b[abc][123]\b`)

var moveCues = []string{"->", "move", " to ", "到", "移"}

// longer phrases first: "center left" must not be read as "center".
var directionWords = []struct {
	phrase string
	pos    string
}{
	{"top left", "a1"}, {"upper left", "a1"},
	{"top right", "c1"}, {"upper right", "c1"},
	{"bottom left", "a3"}, {"lower left", "a3"},
	{"bottom right", "c3"}, {"lower right", "c3"},
	{"top center", "b1"}, {"top middle", "b1"},
	{"bottom center", "b3"}, {"bottom middle", "b3"},
	{"center left", "a2"}, {"middle left", "a2"},
	{"center right", "c2"}, {"middle right", "c2"},
	{"center", "b2"}, {"middle", "b2"},
	{"左上", "a1"}, {"中上", "b1"}, {"右上", "c1"},
	{"左中", "a2"}, {"中間", "b2"}, {"右中", "c2"},
	{"左下", "a3"}, {"中下", "b3"}, {"右下", "c3"},
}

type textInterpreter struct{}

// NewTextInterpreter returns the rule-based interpreter: "b2", "place b2", "a1 -> c3", "move a1 to c3",
// "top left", "把a1移動到b2".
func NewTextInterpreter() CommandInterpreter {
	return &textInterpreter{}
}

func (that *textInterpreter) Interpret(text, player string) (entity.Action, error) {
	lower := strings.ToLower(strings.TrimSpace(text))
	positions := positionPattern.FindAllString(lower, -1)

	switch {
	case len(positions) >= 2 && hasMoveCue(lower):
		return entity.NewAction(entity.ActionMove, player, positions[0], positions[1])
	case len(positions) == 1:
		return entity.NewAction(entity.ActionPlace, player, "", positions[0])
	case len(positions) == 0:
		for _, word := range directionWords {
			if strings.Contains(lower, word.phrase) {
				return entity.NewAction(entity.ActionPlace, player, "", word.pos)
			}
		}
	}

	return entity.Action{}, fmt.Errorf("%w: %q", apperror.ErrUnrecognizedCommand, text)
}

func hasMoveCue(text string) bool {
	for _, cue := range moveCues {
		if strings.Contains(text, cue) {
			return true
		}
	}
	return false
}

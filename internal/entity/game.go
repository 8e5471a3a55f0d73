package entity

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/apperror"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
)

const (
	// PieceCap is the number of pieces a player may have on the board at once.
	PieceCap = 4

	// DefaultMaxPlies is the accepted-action count after which an undecided game is drawn.
	DefaultMaxPlies = 100
)

var (
	ErrBrokenInvariant = errors.New("game invariant broken")

	WinCombos = [8][3]Position{
		{0, 1, 2},
		{3, 4, 5},
		{6, 7, 8},
		{0, 3, 6},
		{1, 4, 7},
		{2, 5, 8},
		{0, 4, 8},
		{2, 4, 6},
	}
)

// Game is the state of one board under the limited-piece rule. It is not safe for concurrent use;
// callers serialise access per game (see repository.GameRepository.Update).
type Game struct {
	ID     string                `json:"id"`
	Board  [BoardSize]string     `json:"board"`
	Pieces map[string][]Position `json:"pieces"` // oldest first
	Turn   string                `json:"turn"`
	Winner string                `json:"winner"`
	Status string                `json:"status"`
	Plies  int                   `json:"plies"`

	MaxPlies    int    `json:"max_plies"`
	FirstPlayer string `json:"first_player"`
}

type Option func(*Game)

// WithMaxPlies sets the draw ceiling; zero disables draws.
func WithMaxPlies(plies int) Option {
	return func(game *Game) {
		if plies >= 0 {
			game.MaxPlies = plies
		}
	}
}

func WithFirstPlayer(mark string) Option {
	return func(game *Game) {
		if mark == PlayerX || mark == PlayerO {
			game.FirstPlayer = mark
		}
	}
}

func NewGame(id string, opts ...Option) *Game {
	game := &Game{
		ID:          id,
		MaxPlies:    DefaultMaxPlies,
		FirstPlayer: PlayerX,
	}

	for _, opt := range opts {
		opt(game)
	}

	game.Reset()

	return game
}

// Reset returns the game to its starting state; ID and rule settings are kept.
func (that *Game) Reset() {
	that.Board = [BoardSize]string{}
	that.Pieces = map[string][]Position{
		PlayerX: {},
		PlayerO: {},
	}
	that.Turn = that.FirstPlayer
	that.Winner = ""
	that.Status = StatusOngoing
	that.Plies = 0
}

// Place puts a new piece of player on the labelled cell.
func (that *Game) Place(player, label string) error {
	if that.IsFinished() {
		return apperror.ErrGameFinished
	}

	if that.Turn != player {
		return apperror.ErrNotYourTurn
	}

	pos, err := ParsePosition(label)
	if err != nil {
		return err
	}

	if that.Board[pos] != EmptyCell {
		return fmt.Errorf("%w: %s", apperror.ErrCellOccupied, pos)
	}

	if len(that.Pieces[player]) >= PieceCap {
		return apperror.ErrMustMove
	}

	that.Board[pos] = player
	that.Pieces[player] = append(that.Pieces[player], pos)

	that.finishTurn(player)

	return nil
}

// Move relocates one of player's pieces. It is only legal once the player is at the piece cap.
// The moved piece keeps its place in the piece log.
func (that *Game) Move(player, fromLabel, toLabel string) error {
	if that.IsFinished() {
		return apperror.ErrGameFinished
	}

	if that.Turn != player {
		return apperror.ErrNotYourTurn
	}

	if len(that.Pieces[player]) < PieceCap {
		return apperror.ErrNotMovePhase
	}

	from, err := ParsePosition(fromLabel)
	if err != nil {
		return err
	}

	to, err := ParsePosition(toLabel)
	if err != nil {
		return err
	}

	if that.Board[from] != player {
		return fmt.Errorf("%w: %s", apperror.ErrNoPieceAtSource, from)
	}

	if that.Board[to] != EmptyCell {
		return fmt.Errorf("%w: %s", apperror.ErrCellOccupied, to)
	}

	idx := slices.Index(that.Pieces[player], from)
	if idx < 0 {
		return fmt.Errorf("%w: %s on board but not in piece log", ErrBrokenInvariant, from)
	}

	that.Board[from] = EmptyCell
	that.Board[to] = player
	that.Pieces[player][idx] = to

	that.finishTurn(player)

	return nil
}

func (that *Game) finishTurn(player string) {
	that.Plies++

	switch winner := that.DetermineWinner(); {
	case winner != "":
		that.Winner = winner
		that.Status = StatusFinished
	case that.MaxPlies > 0 && that.Plies >= that.MaxPlies:
		that.Winner = PlayerTie
		that.Status = StatusFinished
	default:
		that.Turn = Opponent(player)
	}
}

// DetermineWinner returns the mark holding a complete line, or "" if there is none.
func (that *Game) DetermineWinner() string {
	for _, combo := range WinCombos {
		a, b, c := that.Board[combo[0]], that.Board[combo[1]], that.Board[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return a
		}
	}

	return ""
}

// LegalActions lists every action mark could take right now.
func (that *Game) LegalActions(mark string) []Action {
	if that.IsFinished() || that.Turn != mark {
		return nil
	}

	var empty []Position
	for _, pos := range AllPositions() {
		if that.Board[pos] == EmptyCell {
			empty = append(empty, pos)
		}
	}

	if len(that.Pieces[mark]) < PieceCap {
		actions := make([]Action, 0, len(empty))
		for _, to := range empty {
			actions = append(actions, Action{Kind: ActionPlace, Player: mark, To: to.String()})
		}
		return actions
	}

	actions := make([]Action, 0, len(empty)*PieceCap)
	for _, from := range that.Pieces[mark] {
		for _, to := range empty {
			actions = append(actions, Action{Kind: ActionMove, Player: mark, From: from.String(), To: to.String()})
		}
	}

	return actions
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsDraw() bool {
	return that.IsFinished() && that.Winner == PlayerTie
}

// Clone returns a deep copy; callers get snapshots, never the live state.
func (that *Game) Clone() *Game {
	clone := *that
	clone.Pieces = make(map[string][]Position, len(that.Pieces))
	for mark, log := range that.Pieces {
		clone.Pieces[mark] = slices.Clone(log)
		if clone.Pieces[mark] == nil {
			clone.Pieces[mark] = []Position{}
		}
	}

	return &clone
}

// Cells maps every position label to its mark ("" when empty).
func (that *Game) Cells() map[string]string {
	cells := make(map[string]string, BoardSize)
	for _, pos := range AllPositions() {
		cells[pos.String()] = that.Board[pos]
	}

	return cells
}

// CheckInvariants verifies that the board and the piece logs agree.
func (that *Game) CheckInvariants() error {
	occupied := 0
	for _, cell := range that.Board {
		if cell != EmptyCell {
			occupied++
		}
	}

	logged := 0
	for _, mark := range []string{PlayerX, PlayerO} {
		log := that.Pieces[mark]
		if len(log) > PieceCap {
			return fmt.Errorf("%w: %s holds %d pieces", ErrBrokenInvariant, mark, len(log))
		}

		for _, pos := range log {
			if !pos.Valid() || that.Board[pos] != mark {
				return fmt.Errorf("%w: %s logged at %s", ErrBrokenInvariant, mark, pos)
			}
		}

		logged += len(log)
	}

	if occupied != logged {
		return fmt.Errorf("%w: %d occupied cells, %d logged pieces", ErrBrokenInvariant, occupied, logged)
	}

	return nil
}

// String draws the board as three rows, "." for empty cells.
func (that *Game) String() string {
	var sb strings.Builder

	sb.WriteString("   a b c\n")
	for row := range 3 {
		sb.WriteString(fmt.Sprintf(" %d", row+1))
		for column := range 3 {
			cell := that.Board[row*3+column]
			if cell == EmptyCell {
				cell = "."
			}
			sb.WriteString(" " + cell)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

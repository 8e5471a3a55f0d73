package apperror

import "errors"

// rule rejections: expected outcomes of a player's action, never faults.
var (
	ErrGameFinished    = errors.New("game already ended")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrInvalidPosition = errors.New("invalid position")
	ErrCellOccupied    = errors.New("position already occupied")
	ErrMustMove        = errors.New("must move, not place")
	ErrNotMovePhase    = errors.New("not yet at the move phase")
	ErrNoPieceAtSource = errors.New("no piece of yours there")
)

// malformed requests: the caller sent something the engine has no rule for.
var (
	ErrMalformedRequest    = errors.New("malformed request")
	ErrUnknownAction       = errors.New("unknown action")
	ErrInvalidPlayer       = errors.New("invalid player")
	ErrUnrecognizedCommand = errors.New("unrecognized command")
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrNoLegalMoves = errors.New("no legal moves")
)

var ruleViolations = []error{
	ErrGameFinished,
	ErrNotYourTurn,
	ErrInvalidPosition,
	ErrCellOccupied,
	ErrMustMove,
	ErrNotMovePhase,
	ErrNoPieceAtSource,
}

// IsRuleViolation reports whether err is a game rule rejection.
func IsRuleViolation(err error) bool {
	for _, target := range ruleViolations {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

// IsMalformed reports whether err was caused by a request the engine cannot interpret.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedRequest) ||
		errors.Is(err, ErrUnknownAction) ||
		errors.Is(err, ErrInvalidPlayer) ||
		errors.Is(err, ErrUnrecognizedCommand)
}

// Message returns the bare rule message for a rule violation (dropping any detail the caller
// wrapped around it), or the full error text otherwise.
func Message(err error) string {
	for _, target := range ruleViolations {
		if errors.Is(err, target) {
			return target.Error()
		}
	}

	return err.Error()
}

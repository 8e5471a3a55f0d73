package dto

import (
	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/entity"
	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/usecase"
)

// GameState is the wire form of a game shared by the REST and WebSocket transports.
type GameState struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	GameID    string            `json:"game_id"`
	Board     map[string]string `json:"board"`
	BoardText string            `json:"board_str"`
	Winner    *string           `json:"winner"`
	Turn      string            `json:"turn"`
	IsOver    bool              `json:"is_over"`
	Plies     int               `json:"plies"`
	MaxPlies  int               `json:"max_plies"`
}

func NewGameState(success bool, message string, game *entity.Game) GameState {
	state := GameState{
		Success:   success,
		Message:   message,
		GameID:    game.ID,
		Board:     game.Cells(),
		BoardText: game.String(),
		Turn:      game.Turn,
		IsOver:    game.IsFinished(),
		Plies:     game.Plies,
		MaxPlies:  game.MaxPlies,
	}

	if game.Winner != "" {
		winner := game.Winner
		state.Winner = &winner
	}

	return state
}

func FromOutcome(outcome *usecase.Outcome) GameState {
	return NewGameState(outcome.Success, outcome.Message, outcome.Game)
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Success: false, Error: message}
}

type ActionRequest struct {
	Player  string `json:"player"`
	Action  string `json:"action"`
	Pos     string `json:"pos"`
	FromPos string `json:"from_pos"`
}

func (that ActionRequest) ToAction() (entity.Action, error) {
	return entity.NewAction(that.Action, that.Player, that.FromPos, that.Pos)
}

type BotRequest struct {
	Player string `json:"player"`
}

type CommandRequest struct {
	Player string `json:"player"`
	Text   string `json:"text"`
}

package entity

const (
	EventAction = "action"
	EventReset  = "reset"
	EventCreate = "create"
)

// GameEvent describes one accepted change to a game together with the resulting state.
type GameEvent struct {
	GameID string `json:"game_id"`
	Kind   string `json:"kind"`
	Player string `json:"player,omitempty"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
	Game   *Game  `json:"game"`
}

func NewActionEvent(game *Game, action Action) GameEvent {
	return GameEvent{
		GameID: game.ID,
		Kind:   EventAction,
		Player: action.Player,
		From:   action.From,
		To:     action.To,
		Game:   game,
	}
}

func NewGameEvent(game *Game, kind string) GameEvent {
	return GameEvent{
		GameID: game.ID,
		Kind:   kind,
		Game:   game,
	}
}

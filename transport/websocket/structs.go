package websocket

import "encoding/json"

const (
	actionState   = "game:state"
	actionAct     = "game:action"
	actionReset   = "game:reset"
	actionBot     = "game:bot"
	actionCommand = "game:command"
	actionUpdate  = "game:update"
	actionError   = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type ErrorPayload struct {
	Action string `json:"action"`
	Error  string `json:"error"`
}

// UpdatePayload is pushed to every socket of a room after an accepted change.
type UpdatePayload struct {
	Kind   string `json:"kind"`
	Player string `json:"player,omitempty"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
	Game   any    `json:"game"`
}

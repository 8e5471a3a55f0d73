package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/usecase"
	"github.com/rocketscienceinc/fourpiece-tictactoe/transport/dto"
)

func (that *Server) handleState(ctx context.Context, c *client, msg *Message) error {
	game, err := that.manager.GetGame(ctx, c.gameID)
	if err != nil {
		return err
	}

	that.send(c, msg.Action, dto.NewGameState(true, "game state fetched", game))

	return nil
}

func (that *Server) handleAction(ctx context.Context, c *client, msg *Message) error {
	var request dto.ActionRequest
	if err := decodePayload(msg, &request); err != nil {
		return err
	}

	action, err := request.ToAction()
	if err != nil {
		return err
	}

	return that.reply(c, msg, func() (*usecase.Outcome, error) {
		return that.manager.Act(ctx, c.gameID, action)
	})
}

func (that *Server) handleReset(ctx context.Context, c *client, msg *Message) error {
	return that.reply(c, msg, func() (*usecase.Outcome, error) {
		return that.manager.Reset(ctx, c.gameID)
	})
}

func (that *Server) handleBot(ctx context.Context, c *client, msg *Message) error {
	var request dto.BotRequest
	if err := decodePayload(msg, &request); err != nil {
		return err
	}

	return that.reply(c, msg, func() (*usecase.Outcome, error) {
		return that.manager.BotTurn(ctx, c.gameID, request.Player)
	})
}

func (that *Server) handleCommand(ctx context.Context, c *client, msg *Message) error {
	var request dto.CommandRequest
	if err := decodePayload(msg, &request); err != nil {
		return err
	}

	return that.reply(c, msg, func() (*usecase.Outcome, error) {
		return that.manager.Command(ctx, c.gameID, request.Player, request.Text)
	})
}

// reply sends the outcome to the requesting socket only; accepted changes reach the whole room
// through the hub.
func (that *Server) reply(c *client, msg *Message, run func() (*usecase.Outcome, error)) error {
	outcome, err := run()
	if err != nil {
		return err
	}

	that.send(c, msg.Action, dto.FromOutcome(outcome))

	return nil
}

func decodePayload(msg *Message, dst any) error {
	if len(msg.Payload) == 0 {
		return fmt.Errorf("%w: payload is required", apperror.ErrMalformedRequest)
	}

	if err := json.Unmarshal(msg.Payload, dst); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrMalformedRequest, err)
	}

	return nil
}

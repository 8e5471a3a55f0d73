package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/entity"
	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/usecase"
	"github.com/rocketscienceinc/fourpiece-tictactoe/pkg/handlers"
)

type gameManager interface {
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	EnsureGame(ctx context.Context, id string) (*entity.Game, error)
	Act(ctx context.Context, id string, action entity.Action) (*usecase.Outcome, error)
	BotTurn(ctx context.Context, id, player string) (*usecase.Outcome, error)
	Command(ctx context.Context, id, player, text string) (*usecase.Outcome, error)
	Reset(ctx context.Context, id string) (*usecase.Outcome, error)
}

type handlerFunc func(ctx context.Context, c *client, message *Message) error

type Server struct {
	logger  *slog.Logger
	manager gameManager
	hub     *Hub

	upgrader websocket.Upgrader
	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, manager gameManager, hub *Hub) *Server {
	server := &Server{
		logger:  logger.With("component", "websocket"),
		manager: manager,
		hub:     hub,

		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionState] = server.handleState
	server.handlers[actionAct] = server.handleAction
	server.handlers[actionReset] = server.handleReset
	server.handlers[actionBot] = server.handleBot
	server.handlers[actionCommand] = server.handleCommand

	return server
}

// Handler serves the socket endpoint on /ws and a liveness probe on /ping.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", handlers.Ping)
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// upgradeToWebSocket - upgrades the connection to WebSocket and joins the room of the requested game.
func (that *Server) upgradeToWebSocket(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	gameID, err := that.resolveGame(r)
	if err != nil {
		switch {
		case errors.Is(err, apperror.ErrGameNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			log.Error("failed to resolve game", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := newClient(conn, gameID)
	that.hub.join(c)
	go c.writePump()

	log.Info("WebSocket connection established", "game_id", gameID)

	if err = that.handleState(ctx, c, &Message{Action: actionState}); err != nil {
		that.sendError(c, actionState, err)
	}

	that.handleMessages(ctx, c)
}

func (that *Server) resolveGame(r *http.Request) (string, error) {
	gameID := r.URL.Query().Get("game_id")
	if gameID == "" {
		if _, err := that.manager.EnsureGame(r.Context(), usecase.DefaultGameID); err != nil {
			return "", err
		}
		return usecase.DefaultGameID, nil
	}

	if _, err := that.manager.GetGame(r.Context(), gameID); err != nil {
		return "", err
	}

	return gameID, nil
}

// handleMessages - processes messages from the client until the socket closes.
func (that *Server) handleMessages(ctx context.Context, c *client) {
	log := that.logger.With("method", "handleMessages", "game_id", c.gameID)

	defer that.hub.leave(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("error reading message", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			that.sendError(c, "", fmt.Errorf("%w: %w", apperror.ErrMalformedRequest, err))
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			that.sendError(c, message.Action, fmt.Errorf("%w: %q", apperror.ErrUnknownAction, message.Action))
			continue
		}

		if err = handler(ctx, c, &message); err != nil {
			if !apperror.IsMalformed(err) && !errors.Is(err, apperror.ErrGameNotFound) {
				log.Error("error processing message", "action", message.Action, "error", err)
			}
			that.sendError(c, message.Action, err)
		}
	}
}

func (that *Server) send(c *client, action string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		that.logger.Error("failed to marshal payload", "error", err)
		return
	}

	data, err := json.Marshal(Message{Action: action, Payload: body})
	if err != nil {
		that.logger.Error("failed to marshal message", "error", err)
		return
	}

	that.hub.sendTo(c, data)
}

func (that *Server) sendError(c *client, action string, err error) {
	message := err.Error()
	if !apperror.IsMalformed(err) && !errors.Is(err, apperror.ErrGameNotFound) {
		message = "internal server error"
	}

	that.send(c, actionError, ErrorPayload{Action: action, Error: message})
}

package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/entity"
	"github.com/rocketscienceinc/fourpiece-tictactoe/transport/dto"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 16
)

type client struct {
	conn   *websocket.Conn
	gameID string
	send   chan []byte

	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, gameID string) *client {
	return &client{
		conn:   conn,
		gameID: gameID,
		send:   make(chan []byte, sendBuffer),
	}
}

// enqueue hands data to the write pump; a client that cannot keep up is dropped.
func (that *client) enqueue(data []byte) bool {
	select {
	case that.send <- data:
		return true
	default:
		return false
	}
}

func (that *client) close() {
	that.closeOnce.Do(func() {
		close(that.send)
	})
}

func (that *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = that.conn.Close()
	}()

	for {
		select {
		case message, ok := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = that.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := that.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Hub groups sockets into one room per game and broadcasts accepted changes to the room.
type Hub struct {
	logger *slog.Logger

	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger.With("component", "hub"),
		rooms:  make(map[string]map[*client]struct{}),
	}
}

func (that *Hub) join(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.rooms[c.gameID]
	if !ok {
		room = make(map[*client]struct{})
		that.rooms[c.gameID] = room
	}

	room[c] = struct{}{}
}

func (that *Hub) leave(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if room, ok := that.rooms[c.gameID]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(that.rooms, c.gameID)
		}
	}

	c.close()
}

// RoomSize returns the number of sockets watching a game.
func (that *Hub) RoomSize(gameID string) int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.rooms[gameID])
}

// Publish implements usecase.EventPublisher.
func (that *Hub) Publish(_ context.Context, event entity.GameEvent) error {
	payload, err := json.Marshal(UpdatePayload{
		Kind:   event.Kind,
		Player: event.Player,
		From:   event.From,
		To:     event.To,
		Game:   dto.NewGameState(true, event.Kind, event.Game),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal update: %w", err)
	}

	data, err := json.Marshal(Message{Action: actionUpdate, Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	that.broadcast(event.GameID, data)

	return nil
}

func (that *Hub) broadcast(gameID string, data []byte) {
	that.mu.RLock()
	var slow []*client
	for c := range that.rooms[gameID] {
		if !c.enqueue(data) {
			slow = append(slow, c)
		}
	}
	that.mu.RUnlock()

	for _, c := range slow {
		that.logger.Warn("dropping slow socket", "game_id", gameID)
		that.leave(c)
	}
}

// sendTo queues data for one socket of a room.
func (that *Hub) sendTo(c *client, data []byte) {
	that.mu.RLock()
	_, member := that.rooms[c.gameID][c]
	queued := member && c.enqueue(data)
	that.mu.RUnlock()

	if member && !queued {
		that.logger.Warn("dropping slow socket", "game_id", c.gameID)
		that.leave(c)
	}
}

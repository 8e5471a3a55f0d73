package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/entity"
)

const channelPrefix = "tictactoe:game:"

type Publisher struct {
	client *redis.Client
}

// NewPublisher announces game changes over Redis pub/sub, one channel per game.
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

func (that *Publisher) Publish(ctx context.Context, event entity.GameEvent) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err = that.client.Publish(ctx, Channel(event.GameID), eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Subscribe listens to the events of one game until ctx is done. The returned channel is closed
// when the subscription ends.
func (that *Publisher) Subscribe(ctx context.Context, gameID string) (<-chan entity.GameEvent, error) {
	pubsub := that.client.Subscribe(ctx, Channel(gameID))

	// wait for the subscription to be confirmed so no event published afterwards is lost
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	events := make(chan entity.GameEvent)

	go func() {
		defer close(events)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}

				var event entity.GameEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					continue
				}

				select {
				case events <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events, nil
}

func Channel(gameID string) string {
	return channelPrefix + gameID
}

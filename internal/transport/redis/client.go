package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
)

// Publisher mirrors snapshots of a session to a Redis pub/sub channel.
// Nothing is stored, subscribers only see snapshots published while they listen.
type Publisher struct {
	client *redis.Client
	prefix string
}

// New - connects to Redis and checks the connection.
func New(ctx context.Context, addr, prefix string) (*Publisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewWithClient(client, prefix), nil
}

func NewWithClient(client *redis.Client, prefix string) *Publisher {
	return &Publisher{
		client: client,
		prefix: prefix,
	}
}

// Channel - returns the channel snapshots of the session are published to.
func (that *Publisher) Channel(sessionID string) string {
	return that.prefix + ":" + sessionID
}

func (that *Publisher) Render(ctx context.Context, snapshot entity.Snapshot) error {
	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err = that.client.Publish(ctx, that.Channel(snapshot.SessionID), snapshotJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish snapshot: %w", err)
	}

	return nil
}

func (that *Publisher) Close() error {
	if err := that.client.Close(); err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}

	return nil
}

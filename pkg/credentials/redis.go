package credentials

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis stores one token per vehicle in a Redis instance. Keys are namespaced as
// {project}:{table}:{vehicleID} so that several adapter deployments can share a server.
type Redis struct {
	client  *redis.Client
	project string
	table   string
}

func NewRedis(client *redis.Client, project, table string) *Redis {
	return &Redis{client: client, project: project, table: table}
}

func (r *Redis) key(vehicleID string) string {
	return fmt.Sprintf("%s:%s:%s", r.project, r.table, vehicleID)
}

func (r *Redis) Get(ctx context.Context, vehicleID string) (string, error) {
	token, err := r.client.Get(ctx, r.key(vehicleID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("credential store read failed: %w", err)
	}
	return token, nil
}

func (r *Redis) Put(ctx context.Context, vehicleID, token string) error {
	// No expiry: credentials live until overwritten.
	if err := r.client.Set(ctx, r.key(vehicleID), token, 0).Err(); err != nil {
		return fmt.Errorf("credential store write failed: %w", err)
	}
	return nil
}

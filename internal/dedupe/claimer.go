package dedupe

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "IRW:Event:"

// Claimer records that an event has been taken so that a redelivery of the
// same notification is not processed twice.
type Claimer interface {
	// Claim returns true the first time id is seen within the TTL.
	Claim(ctx context.Context, id string) (bool, error)
	// Release forgets id so a later delivery can be processed again.
	Release(ctx context.Context, id string) error
}

type RedisClaimer struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisClaimer(client redis.UniversalClient, ttl time.Duration) *RedisClaimer {
	return &RedisClaimer{client: client, ttl: ttl}
}

func (c *RedisClaimer) Claim(ctx context.Context, id string) (bool, error) {
	ok, err := c.client.SetNX(ctx, keyPrefix+id, time.Now().UTC().Format(time.RFC3339), c.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", id, err)
	}
	return ok, nil
}

func (c *RedisClaimer) Release(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("release %s: %w", id, err)
	}
	return nil
}

// NoopClaimer accepts every event.
type NoopClaimer struct{}

func (NoopClaimer) Claim(context.Context, string) (bool, error) { return true, nil }

func (NoopClaimer) Release(context.Context, string) error { return nil }

// NewRedisClient connects to a single Redis node and pings it.
func NewRedisClient(ctx context.Context, addr string, password string) (*redis.Client, error) {
	cl := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := cl.Ping(pingCtx).Err(); err != nil {
		_ = cl.Close()
		return nil, fmt.Errorf("error pinging redis server: %w", err)
	}
	return cl, nil
}

// EventID identifies one notification. Events without a sequencer cannot
// be told apart from re-uploads and get an empty id.
func EventID(bucket, key, sequencer string) string {
	if sequencer == "" {
		return ""
	}
	return bucket + "/" + key + "@" + sequencer
}

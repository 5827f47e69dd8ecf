package collab

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ============================================================
// Redis pub/sub channel
// ============================================================

// RedisChannel relays presence through Redis so collaborators connected to
// different processes see each other. One pub/sub channel per project.
type RedisChannel struct {
	client *redis.Client
	prefix string
	buffer int
}

func NewRedisChannel(client *redis.Client, prefix string, buffer int) *RedisChannel {
	if prefix == "" {
		prefix = "sketcher:presence"
	}
	if buffer <= 0 {
		buffer = 64
	}
	return &RedisChannel{client: client, prefix: prefix, buffer: buffer}
}

// NewRedisClient dials lazily; call Ping to check the connection.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func (r *RedisChannel) channelName(projectID string) string {
	return r.prefix + ":" + projectID
}

func (r *RedisChannel) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return eris.Wrap(err, "redis ping")
	}
	return nil
}

func (r *RedisChannel) Publish(ctx context.Context, msg Message) error {
	data, err := msg.Encode()
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.channelName(msg.ProjectID), data).Err(); err != nil {
		return eris.Wrapf(err, "publish presence for project %s", msg.ProjectID)
	}
	return nil
}

func (r *RedisChannel) Subscribe(ctx context.Context, projectID string) (<-chan Message, func(), error) {
	ps := r.client.Subscribe(ctx, r.channelName(projectID))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, eris.Wrapf(err, "subscribe presence for project %s", projectID)
	}

	out := make(chan Message, r.buffer)
	done := make(chan struct{})
	go func() {
		defer close(out)
		for {
			select {
			case <-done:
				return
			case raw, ok := <-ps.Channel():
				if !ok {
					return
				}
				msg, err := DecodeMessage([]byte(raw.Payload))
				if err != nil {
					zap.L().Debug("dropping presence message", zap.String("channel", raw.Channel), zap.Error(err))
					continue
				}
				select {
				case out <- msg:
				default:
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = ps.Close()
		})
	}
	return out, cancel, nil
}

func (r *RedisChannel) Close() error {
	return r.client.Close()
}

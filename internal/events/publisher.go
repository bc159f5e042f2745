package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	TypeStarted    = "interview.started"
	TypeCompleted  = "interview.completed"
	TypeTerminated = "interview.terminated"
)

const publishTimeout = 2 * time.Second

type Event struct {
	Type          string    `json:"type"`
	SessionID     string    `json:"sessionId"`
	Status        string    `json:"status"`
	Rating        *float64  `json:"rating,omitempty"`
	Violations    int       `json:"violations"`
	QuestionCount int       `json:"questionCount"`
	At            time.Time `json:"at"`
	InstanceID    string    `json:"instanceId"`
}

// Publisher announces interview lifecycle changes to other services
type Publisher interface {
	Publish(ctx context.Context, event Event)
	Close() error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) {}
func (NopPublisher) Close() error                   { return nil }

type RedisPublisher struct {
	rdb        *redis.Client
	channel    string
	instanceID string
	logger     *zap.Logger
}

func NewRedisPublisher(redisAddr, channel string, logger *zap.Logger) *RedisPublisher {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	return &RedisPublisher{
		rdb:        rdb,
		channel:    channel,
		instanceID: uuid.New().String()[:8], // Short instance ID for logging
		logger:     logger,
	}
}

// Publish is best effort; failures are logged and never block the interview
func (p *RedisPublisher) Publish(ctx context.Context, event Event) {
	event.InstanceID = p.instanceID
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal event", zap.String("type", event.Type), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := p.rdb.Publish(ctx, p.channel, data).Err(); err != nil {
		p.logger.Warn("Failed to publish event",
			zap.String("type", event.Type),
			zap.String("session_id", event.SessionID),
			zap.Error(err),
		)
	}
}

func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}

package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	keyPrefix         = "mamacare:conversation:"
	defaultMaxRetries = 20
)

// ErrConflict is returned when optimistic retries are exhausted
var ErrConflict = errors.New("conversation: too many concurrent updates")

// RedisStore keeps state as JSON values and uses WATCH/MULTI so a
// concurrent writer forces a retry instead of a lost update
type RedisStore struct {
	redis      *redis.Client
	tracer     trace.Tracer
	ttl        time.Duration
	maxRetries int
	now        func() time.Time
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a store. ttl 0 keeps state forever.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if client == nil {
		panic("conversation: redis client cannot be nil")
	}
	return &RedisStore{
		redis:      client,
		tracer:     otel.Tracer("mamacare.internal.conversation"),
		ttl:        ttl,
		maxRetries: defaultMaxRetries,
		now:        time.Now,
	}
}

// Get loads the state for phone
func (s *RedisStore) Get(ctx context.Context, phone string) (*State, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.get")
	defer span.End()

	state, err := s.read(ctx, s.redis, phone)
	if err != nil && !errors.Is(err, ErrNotFound) {
		span.RecordError(err)
	}
	return state, err
}

// Update runs fn inside an optimistic transaction on the phone's key
func (s *RedisStore) Update(ctx context.Context, phone, displayName string, fn Mutator) (*State, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.update")
	defer span.End()

	key := stateKey(phone)
	var saved *State

	txf := func(tx *redis.Tx) error {
		state, err := s.read(ctx, tx, phone)
		if errors.Is(err, ErrNotFound) {
			state = NewState(phone, displayName)
		} else if err != nil {
			return err
		}

		if err := fn(state); err != nil {
			return err
		}
		state.Version++
		if state.LastMessageAt.IsZero() {
			state.LastMessageAt = s.now()
		}

		data, err := json.Marshal(state)
		if err != nil {
			return fmt.Errorf("failed to marshal conversation: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		if err == nil {
			saved = state
		}
		return err
	}

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		err := s.redis.Watch(ctx, txf, key)
		if err == nil {
			span.SetAttributes(attribute.Int("conversation.attempts", attempt))
			return saved, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		span.RecordError(err)
		return nil, err
	}

	span.RecordError(ErrConflict)
	return nil, ErrConflict
}

func (s *RedisStore) read(ctx context.Context, c getter, phone string) (*State, error) {
	data, err := c.Get(ctx, stateKey(phone)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode conversation: %w", err)
	}
	if state.History == nil {
		state.History = []Turn{}
	}
	return &state, nil
}

// getter is satisfied by both *redis.Client and *redis.Tx
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func stateKey(phone string) string {
	return keyPrefix + phone
}

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type intentKV interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type intentKeyer interface {
	CheckoutIntentKey(sessionID string) string
}

// Intent records an interrupted checkout attempt by an anonymous visitor.
type Intent struct {
	ResumePath string    `json:"resume_path"`
	RecordedAt time.Time `json:"recorded_at"`
}

// IntentStore keeps checkout intents in Redis with a bounded lifetime.
type IntentStore struct {
	kv    intentKV
	keyer intentKeyer
	ttl   time.Duration
}

// NewIntentStore builds the intent store.
func NewIntentStore(kv intentKV, keyer intentKeyer, ttl time.Duration) (*IntentStore, error) {
	if kv == nil {
		return nil, fmt.Errorf("kv store required")
	}
	if keyer == nil {
		return nil, fmt.Errorf("intent keyer required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("intent ttl must be positive")
	}
	return &IntentStore{kv: kv, keyer: keyer, ttl: ttl}, nil
}

// Record stores the visitor's intent, replacing any earlier one.
func (s *IntentStore) Record(ctx context.Context, visitorID, resumePath string) error {
	if visitorID == "" {
		return fmt.Errorf("visitor id is required")
	}
	raw, err := json.Marshal(Intent{ResumePath: resumePath, RecordedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode intent: %w", err)
	}
	return s.kv.Set(ctx, s.keyer.CheckoutIntentKey(visitorID), string(raw), s.ttl)
}

// Take returns the visitor's recorded intent and removes it. A missing or
// unreadable intent yields nil.
func (s *IntentStore) Take(ctx context.Context, visitorID string) (*Intent, error) {
	if visitorID == "" {
		return nil, fmt.Errorf("visitor id is required")
	}
	key := s.keyer.CheckoutIntentKey(visitorID)
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("load intent: %w", err)
	}
	if err := s.kv.Del(ctx, key); err != nil {
		return nil, fmt.Errorf("consume intent: %w", err)
	}

	var intent Intent
	if err := json.Unmarshal([]byte(raw), &intent); err != nil {
		return nil, nil
	}
	return &intent, nil
}

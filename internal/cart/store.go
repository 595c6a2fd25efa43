package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/chifaexpress/storefront-backend/pkg/logger"
)

type kvStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type cartKeyer interface {
	CartKey(profileID string) string
}

// Store persists cart snapshots in Redis, one fixed key per profile.
type Store struct {
	kv    kvStore
	keyer cartKeyer
	logg  *logger.Logger
}

// NewStore builds a Redis-backed cart store.
func NewStore(kv kvStore, keyer cartKeyer, logg *logger.Logger) (*Store, error) {
	if kv == nil {
		return nil, fmt.Errorf("kv store required")
	}
	if keyer == nil {
		return nil, fmt.Errorf("cart keyer required")
	}
	return &Store{kv: kv, keyer: keyer, logg: logg}, nil
}

// Load returns the profile's cart. A missing key yields an empty cart and a
// corrupt payload is discarded so the next mutation starts clean.
func (s *Store) Load(ctx context.Context, profileID string) (Snapshot, error) {
	key := s.keyer.CartKey(profileID)
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return Snapshot{}, nil
		}
		return Snapshot{}, fmt.Errorf("load cart %s: %w", key, err)
	}

	snap, ok := decodeSnapshot(raw)
	if !ok {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "cart_key", key), "discarding unreadable cart snapshot")
		}
		if err := s.kv.Del(ctx, key); err != nil {
			return Snapshot{}, fmt.Errorf("discard cart %s: %w", key, err)
		}
		return Snapshot{}, nil
	}
	return snap, nil
}

// Save rewrites the profile's full cart snapshot.
func (s *Store) Save(ctx context.Context, profileID string, snap Snapshot) error {
	encoded, err := encodeSnapshot(snap)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	key := s.keyer.CartKey(profileID)
	if err := s.kv.Set(ctx, key, encoded, 0); err != nil {
		return fmt.Errorf("save cart %s: %w", key, err)
	}
	return nil
}

// Clear removes the profile's cart entirely.
func (s *Store) Clear(ctx context.Context, profileID string) error {
	key := s.keyer.CartKey(profileID)
	if err := s.kv.Del(ctx, key); err != nil {
		return fmt.Errorf("clear cart %s: %w", key, err)
	}
	return nil
}

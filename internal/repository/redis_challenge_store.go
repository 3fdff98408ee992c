package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Dequr01/fair-ticket/internal/domain"
	pkgredis "github.com/Dequr01/fair-ticket/pkg/redis"
)

const challengeKeyPrefix = "fairticket:challenge:"

// RedisChallengeStore implements ChallengeStore with per-key TTL equal to
// the challenge's remaining validity, so expiry needs no background
// sweeper.
type RedisChallengeStore struct {
	client *pkgredis.Client
}

func NewRedisChallengeStore(client *pkgredis.Client) *RedisChallengeStore {
	return &RedisChallengeStore{client: client}
}

func (s *RedisChallengeStore) Put(ctx context.Context, ch *Challenge) error {
	ttl := time.Until(ch.Deadline)
	if ttl <= 0 {
		return domain.ErrChallengeExpired
	}

	payload, err := json.Marshal(ch)
	if err != nil {
		return fmt.Errorf("failed to marshal challenge: %w", err)
	}

	if err := s.client.Client().Set(ctx, challengeKeyPrefix+ch.ID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store challenge: %w", err)
	}
	return nil
}

func (s *RedisChallengeStore) Get(ctx context.Context, id string) (*Challenge, error) {
	payload, err := s.client.Client().Get(ctx, challengeKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to load challenge: %w", err)
	}

	var ch Challenge
	if err := json.Unmarshal(payload, &ch); err != nil {
		return nil, fmt.Errorf("failed to unmarshal challenge: %w", err)
	}
	return &ch, nil
}

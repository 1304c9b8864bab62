package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrOAuthStateNotFound = errors.New("oauth state not found or expired")
)

const (
	revokedTokenPrefix = "session:revoked:"
	oauthStatePrefix   = "oauth:state:"
)

// SessionRepository keeps short-lived session state in Redis: revoked token
// ids and pending OAuth state nonces.
type SessionRepository interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	SaveOAuthState(ctx context.Context, state, audience string, ttl time.Duration) error
	// ConsumeOAuthState returns the audience stored for state and deletes it,
	// so each state can be used once.
	ConsumeOAuthState(ctx context.Context, state string) (string, error)
}

type sessionRepository struct {
	client *redis.Client
}

// NewSessionRepository creates a new instance of SessionRepository
func NewSessionRepository(client *redis.Client) SessionRepository {
	return &sessionRepository{client: client}
}

// Revoke denylists tokenID until ttl elapses. A non-positive ttl means the
// token has already expired and nothing is stored.
func (r *sessionRepository) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, revokedTokenPrefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (r *sessionRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedTokenPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session revocation: %w", err)
	}
	return n > 0, nil
}

func (r *sessionRepository) SaveOAuthState(ctx context.Context, state, audience string, ttl time.Duration) error {
	if err := r.client.Set(ctx, oauthStatePrefix+state, audience, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save oauth state: %w", err)
	}
	return nil
}

func (r *sessionRepository) ConsumeOAuthState(ctx context.Context, state string) (string, error) {
	audience, err := r.client.GetDel(ctx, oauthStatePrefix+state).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrOAuthStateNotFound
		}
		return "", fmt.Errorf("failed to consume oauth state: %w", err)
	}
	return audience, nil
}

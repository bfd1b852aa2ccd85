package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/umeloans/loan-wizard/internal/domain"
	apperrors "github.com/umeloans/loan-wizard/pkg/errors"
)

// DefaultKeyPrefix is the storage slot prefix for saved wizard sessions.
const DefaultKeyPrefix = "ume_loans_session"

// DefaultExpiry is the session expiry window. Snapshots older than this are
// treated as absent and deleted on read.
const DefaultExpiry = 24 * time.Hour

// Gateway persists one expiring snapshot of wizard progress per session.
type Gateway interface {
	// SaveProgress overwrites the snapshot for sessionID unconditionally.
	SaveProgress(ctx context.Context, sessionID string, formData domain.LoanFormData, step int) error

	// GetProgress returns the snapshot, or nil when none exists. A snapshot
	// older than the expiry window is deleted and reported as absent.
	GetProgress(ctx context.Context, sessionID string) (*domain.SavedSession, error)

	// ClearProgress deletes the snapshot unconditionally.
	ClearProgress(ctx context.Context, sessionID string) error
}

type redisGateway struct {
	client    *redis.Client
	keyPrefix string
	expiry    time.Duration
	now       func() time.Time
}

// NewRedisGateway creates a Redis-backed gateway. Expiry is evaluated on
// read; the matching Redis TTL is only a backstop for abandoned keys.
func NewRedisGateway(client *redis.Client, keyPrefix string, expiry time.Duration) Gateway {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &redisGateway{
		client:    client,
		keyPrefix: keyPrefix,
		expiry:    expiry,
		now:       time.Now,
	}
}

func (g *redisGateway) key(sessionID string) string {
	return g.keyPrefix + ":" + sessionID
}

func (g *redisGateway) SaveProgress(ctx context.Context, sessionID string, formData domain.LoanFormData, step int) error {
	snapshot := domain.SavedSession{
		FormData:  formData,
		Step:      step,
		Timestamp: g.now().UnixMilli(),
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return apperrors.WrapStorageError(err)
	}

	if err := g.client.Set(ctx, g.key(sessionID), payload, g.expiry).Err(); err != nil {
		return apperrors.WrapStorageError(err)
	}

	return nil
}

func (g *redisGateway) GetProgress(ctx context.Context, sessionID string) (*domain.SavedSession, error) {
	payload, err := g.client.Get(ctx, g.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.WrapStorageError(err)
	}

	var snapshot domain.SavedSession
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		// Corrupt snapshots fail loudly; the caller degrades to "no saved
		// session" instead of crashing the wizard.
		return nil, apperrors.WrapStorageError(err)
	}

	if snapshot.Age(g.now()) > g.expiry {
		if err := g.client.Del(ctx, g.key(sessionID)).Err(); err != nil {
			return nil, apperrors.WrapStorageError(err)
		}
		return nil, nil
	}

	return &snapshot, nil
}

func (g *redisGateway) ClearProgress(ctx context.Context, sessionID string) error {
	if err := g.client.Del(ctx, g.key(sessionID)).Err(); err != nil {
		return apperrors.WrapStorageError(err)
	}
	return nil
}

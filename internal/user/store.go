package user

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/thesrcielos/PadelTracker/internal/apperrors"
	"github.com/thesrcielos/PadelTracker/pkg/logger"
	"go.uber.org/zap"
)

const (
	refreshPrefix  = "auth:refresh:"
	revokedPrefix  = "auth:revoked:"
	attemptsPrefix = "auth:attempts:"
	confirmPrefix  = "auth:confirm:"
	oauthPrefix    = "auth:oauth:"
	eventsPrefix   = "auth:events:"
)

// OAuthState is remembered between the authorize redirect and the callback.
type OAuthState struct {
	Provider   string `json:"provider"`
	RedirectTo string `json:"redirectTo"`
}

type TokenStore interface {
	SaveRefreshToken(ctx context.Context, token, userID string, ttl time.Duration) error
	TakeRefreshToken(ctx context.Context, token string) (string, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	CountAttempt(ctx context.Context, email string, window time.Duration) (int64, error)
	ResetAttempts(ctx context.Context, email string) error
	SaveConfirmation(ctx context.Context, token, userID string, ttl time.Duration) error
	TakeConfirmation(ctx context.Context, token string) (string, error)
	SaveOAuthState(ctx context.Context, state string, st OAuthState, ttl time.Duration) error
	TakeOAuthState(ctx context.Context, state string) (*OAuthState, error)
	Publish(ctx context.Context, ev Event) error
	Subscribe(ctx context.Context, userID string) (<-chan Event, error)
}

type RedisTokenStore struct {
	db  *redis.Client
	log *logger.Logger
}

func NewRedisTokenStore(db *redis.Client, log *logger.Logger) *RedisTokenStore {
	return &RedisTokenStore{db: db, log: log}
}

func (r *RedisTokenStore) SaveRefreshToken(ctx context.Context, token, userID string, ttl time.Duration) error {
	if err := r.db.Set(ctx, refreshPrefix+token, userID, ttl).Err(); err != nil {
		return apperrors.NewAppError(500, "Error saving refresh token", err)
	}
	return nil
}

// TakeRefreshToken consumes the token and returns its user id, or "" when
// the token is unknown or already used.
func (r *RedisTokenStore) TakeRefreshToken(ctx context.Context, token string) (string, error) {
	return r.take(ctx, refreshPrefix+token, "Error reading refresh token")
}

func (r *RedisTokenStore) DeleteRefreshToken(ctx context.Context, token string) error {
	if err := r.db.Del(ctx, refreshPrefix+token).Err(); err != nil {
		return apperrors.NewAppError(500, "Error deleting refresh token", err)
	}
	return nil
}

func (r *RedisTokenStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.db.Set(ctx, revokedPrefix+jti, 1, ttl).Err(); err != nil {
		return apperrors.NewAppError(500, "Error revoking token", err)
	}
	return nil
}

func (r *RedisTokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.db.Exists(ctx, revokedPrefix+jti).Result()
	if err != nil {
		return false, apperrors.NewAppError(500, "Error checking token", err)
	}
	return n > 0, nil
}

// CountAttempt increments the per-email counter, starting the window on the
// first attempt.
func (r *RedisTokenStore) CountAttempt(ctx context.Context, email string, window time.Duration) (int64, error) {
	key := attemptsPrefix + email
	n, err := r.db.Incr(ctx, key).Result()
	if err != nil {
		return 0, apperrors.NewAppError(500, "Error checking rate limit", err)
	}
	if n == 1 {
		if err := r.db.Expire(ctx, key, window).Err(); err != nil {
			return 0, apperrors.NewAppError(500, "Error checking rate limit", err)
		}
	}
	return n, nil
}

func (r *RedisTokenStore) ResetAttempts(ctx context.Context, email string) error {
	return r.db.Del(ctx, attemptsPrefix+email).Err()
}

func (r *RedisTokenStore) SaveConfirmation(ctx context.Context, token, userID string, ttl time.Duration) error {
	if err := r.db.Set(ctx, confirmPrefix+token, userID, ttl).Err(); err != nil {
		return apperrors.NewAppError(500, "Error saving confirmation token", err)
	}
	return nil
}

func (r *RedisTokenStore) TakeConfirmation(ctx context.Context, token string) (string, error) {
	return r.take(ctx, confirmPrefix+token, "Error reading confirmation token")
}

func (r *RedisTokenStore) SaveOAuthState(ctx context.Context, state string, st OAuthState, ttl time.Duration) error {
	data, err := json.Marshal(st)
	if err != nil {
		return apperrors.NewAppError(500, "Error serializing oauth state", err)
	}
	if err := r.db.Set(ctx, oauthPrefix+state, data, ttl).Err(); err != nil {
		return apperrors.NewAppError(500, "Error saving oauth state", err)
	}
	return nil
}

func (r *RedisTokenStore) TakeOAuthState(ctx context.Context, state string) (*OAuthState, error) {
	val, err := r.take(ctx, oauthPrefix+state, "Error reading oauth state")
	if err != nil || val == "" {
		return nil, err
	}
	var st OAuthState
	if err := json.Unmarshal([]byte(val), &st); err != nil {
		return nil, apperrors.NewAppError(500, "Error unmarshalling oauth state", err)
	}
	return &st, nil
}

func (r *RedisTokenStore) take(ctx context.Context, key, failure string) (string, error) {
	val, err := r.db.GetDel(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	} else if err != nil {
		return "", apperrors.NewAppError(500, failure, err)
	}
	return val, nil
}

func (r *RedisTokenStore) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return apperrors.NewAppError(500, "Error serializing auth event", err)
	}
	if err := r.db.Publish(ctx, eventsPrefix+ev.UserID, data).Err(); err != nil {
		return apperrors.NewAppError(500, "Error publishing auth event", err)
	}
	return nil
}

// Subscribe streams the user's auth events until ctx is done, then closes
// the returned channel.
func (r *RedisTokenStore) Subscribe(ctx context.Context, userID string) (<-chan Event, error) {
	sub := r.db.Subscribe(ctx, eventsPrefix+userID)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, apperrors.NewAppError(500, "Error subscribing to auth events", err)
	}

	out := make(chan Event, 8)
	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					r.log.Warn("dropping malformed auth event", zap.String("user_id", userID), zap.Error(err))
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

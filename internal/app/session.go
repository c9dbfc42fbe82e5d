// internal/app/session.go
package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/kardemumma/internal/models"
)

const (
	timeFormat  = "2006-01-02 15:04:05"
	tokenPrefix = "sk-krdm-"
)

// Identity is the authenticated caller as the handlers see it. Role
// checks are preconditions on each operation; the operations
// themselves never re-derive the role.
type Identity struct {
	UserID string
	Role   string
}

// SessionManager keeps opaque login tokens in redis hashes, one hash
// per token with the user id, role, and request bookkeeping.
type SessionManager struct {
	enabled     bool
	redis       *redis.Client
	tokenHeader string
	keyPrefix   string
	ttl         time.Duration
}

func NewSessionManager(config *Config) (*SessionManager, error) {
	if !config.Server.EnableAuth {
		return &SessionManager{enabled: false}, nil
	}

	opt, err := redis.ParseURL(config.Auth.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &SessionManager{
		enabled:     true,
		redis:       client,
		tokenHeader: config.Auth.TokenHeader,
		keyPrefix:   config.Auth.SessionKeyPrefix,
		ttl:         time.Duration(config.Auth.SessionTTLMinutes) * time.Minute,
	}, nil
}

func (sm *SessionManager) Enabled() bool {
	return sm.enabled
}

func (sm *SessionManager) Close() error {
	if sm.redis != nil {
		return sm.redis.Close()
	}
	return nil
}

func generateToken() (string, error) {
	randomBytes := make([]byte, 16)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return tokenPrefix + hex.EncodeToString(randomBytes), nil
}

// Issue creates a session for the user and returns its token. With
// auth disabled there is nothing to issue.
func (sm *SessionManager) Issue(ctx context.Context, user *models.User) (string, error) {
	if !sm.enabled {
		return "", nil
	}

	token, err := generateToken()
	if err != nil {
		return "", err
	}

	key := sm.keyPrefix + token
	now := time.Now().UTC()

	pipe := sm.redis.Pipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"user_id":               user.ID,
		"role":                  user.Role,
		"request_count":         0,
		"last_request_dttm_utc": now.Format(timeFormat),
		"created_dttm_utc":      now.Format(timeFormat),
	})
	pipe.Expire(ctx, key, sm.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	return token, nil
}

// Resolve maps a bearer token from the request header value to the
// caller's identity, bumping the request counters on the way.
func (sm *SessionManager) Resolve(ctx context.Context, authHeader string) (*Identity, error) {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, fmt.Errorf("invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")

	key := sm.keyPrefix + token
	fields, err := sm.redis.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}
	if len(fields) == 0 {
		logger.Debug.Printf("Session not found for key: %s", key)
		return nil, fmt.Errorf("session not found")
	}

	now := time.Now().UTC()
	pipe := sm.redis.Pipeline()
	pipe.HIncrBy(ctx, key, "request_count", 1)
	pipe.HSet(ctx, key, "last_request_dttm_utc", now.Format(timeFormat))
	pipe.Expire(ctx, key, sm.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Debug.Printf("Failed to update session stats for %s: %v", key, err)
	}

	return &Identity{
		UserID: fields["user_id"],
		Role:   fields["role"],
	}, nil
}

func (sm *SessionManager) TokenHeader() string {
	return sm.tokenHeader
}

package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avolkhin/sqlarena/internal/models"
)

const (
	timeFormat  = "2006-01-02 15:04:05"
	tokenPrefix = "sk-arena-"
)

// TokenManager issues API tokens for known users. It lives next to Auth so
// the bot can hand out tokens that Auth later resolves.
type TokenManager struct {
	redis       *redis.Client
	keyTemplate string
}

func NewTokenManager(redisURL, keyTemplate string) (*TokenManager, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return &TokenManager{
		redis:       redis.NewClient(opt),
		keyTemplate: keyTemplate,
	}, nil
}

func generateToken() (string, error) {
	randomBytes := make([]byte, 12)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return tokenPrefix + hex.EncodeToString(randomBytes), nil
}

// IssueToken creates a fresh token for a user and stores the mapping Auth
// reads. Previously issued tokens stay valid; revocation is a redis delete.
func (tm *TokenManager) IssueToken(ctx context.Context, userID int64, role models.Role) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}

	key := strings.NewReplacer("{token}", token).Replace(tm.keyTemplate)
	now := time.Now().UTC()

	pipe := tm.redis.Pipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"user_id":          userID,
		"role":             string(role),
		"created_dttm_utc": now.Format(timeFormat),
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}

	return token, nil
}

func (tm *TokenManager) Close() error {
	if tm.redis != nil {
		return tm.redis.Close()
	}
	return nil
}

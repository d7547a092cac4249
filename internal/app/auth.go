// internal/app/auth.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/avolkhin/sqlarena/internal/models"
)

// Auth resolves the bearer token of a request into a Principal. Token
// issuing and user accounts live outside this service; redis only holds
// the token -> {user_id, role} mapping.
type Auth struct {
	enabled     bool
	redis       *redis.Client
	keyTemplate string
	tokenHeader string
}

func NewAuth(config *Config) (*Auth, error) {
	if !config.Server.EnableAuth {
		return &Auth{enabled: false}, nil
	}

	opt, err := redis.ParseURL(config.Auth.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Auth{
		enabled:     true,
		redis:       client,
		keyTemplate: config.Auth.TokenKeyTemplate,
		tokenHeader: config.Auth.TokenHeader,
	}, nil
}

func (a *Auth) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

// Principal authenticates a request. With auth disabled the caller identity
// comes from plain headers, which is only good for local development.
func (a *Auth) Principal(r *http.Request) (models.Principal, error) {
	if !a.enabled {
		return devPrincipal(r)
	}

	authHeader := r.Header.Get(a.tokenHeader)
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return models.Principal{}, fmt.Errorf("invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")

	key := strings.NewReplacer("{token}", token).Replace(a.keyTemplate)

	fields, err := a.redis.HGetAll(r.Context(), key).Result()
	if err == redis.Nil || len(fields) == 0 {
		logger.Debug.Printf("Token not found for key: %s", key)
		return models.Principal{}, fmt.Errorf("token not found")
	}
	if err != nil {
		logger.Debug.Printf("Redis error: %v", err)
		return models.Principal{}, fmt.Errorf("redis error: %w", err)
	}

	userID, err := strconv.ParseInt(fields["user_id"], 10, 64)
	if err != nil {
		return models.Principal{}, fmt.Errorf("malformed token record")
	}

	role := models.Role(fields["role"])
	if role != models.RoleUser && role != models.RoleOrganizer {
		return models.Principal{}, fmt.Errorf("malformed token record")
	}

	return models.Principal{ID: userID, Role: role}, nil
}

func devPrincipal(r *http.Request) (models.Principal, error) {
	userID, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
	if err != nil {
		return models.Principal{}, fmt.Errorf("missing X-User-ID header")
	}
	role := models.Role(r.Header.Get("X-User-Role"))
	if role == "" {
		role = models.RoleUser
	}
	return models.Principal{ID: userID, Role: role}, nil
}

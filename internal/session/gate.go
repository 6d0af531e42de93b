package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"accounthub/internal/domain/entity"
	"accounthub/pkg/helpers"
)

var ErrNoSession = errors.New("no active session")

// Identity is the authenticated principal attached to a request.
type Identity struct {
	UserID   string
	Username string
	Email    string
	Language string
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// Gate issues and checks sessions. Handlers and middleware depend on this
// interface only, never on Redis or JWT directly.
type Gate interface {
	// Start opens a session for the user and returns the token pair to be
	// set as cookies.
	Start(ctx context.Context, u *entity.User, language string) (TokenPair, error)
	// Resolve maps an access token to the identity of its live session.
	Resolve(ctx context.Context, accessToken string) (*Identity, error)
	// Destroy removes the server-side session, invalidating issued tokens.
	Destroy(ctx context.Context, userID string) error
	// SetLanguage updates the locale stored on a live session. It is a no-op
	// when the user has no session.
	SetLanguage(ctx context.Context, userID, code string) error
}

func sessionKey(userID string) string {
	return "user:session:" + userID
}

// RedisGate implements Gate with JWT cookies backed by a Redis session hash.
// The access token carries a session id; a token whose sid no longer matches
// the hash is rejected even if its signature is still valid.
type RedisGate struct {
	RDB        *redis.Client
	JWT        *helpers.JWTManager
	SessionTTL time.Duration
}

func NewRedisGate(rdb *redis.Client, jwt *helpers.JWTManager, ttl time.Duration) *RedisGate {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisGate{RDB: rdb, JWT: jwt, SessionTTL: ttl}
}

func (g *RedisGate) Start(ctx context.Context, u *entity.User, language string) (TokenPair, error) {
	sid := uuid.NewString()
	access, aexp, err := g.JWT.GenerateAccessToken(u.ID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := g.JWT.GenerateRefreshToken(u.ID, sid)
	if err != nil {
		return TokenPair{}, err
	}

	key := sessionKey(u.ID)
	fields := map[string]any{
		"user_id":    u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"sid":        sid,
		"lang":       language,
		"created_at": time.Now().UTC().Format(time.RFC3339Nano),
	}
	pipe := g.RDB.Pipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, g.SessionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:        access,
		AccessTokenExpiry:  aexp,
		RefreshToken:       refresh,
		RefreshTokenExpiry: rexp,
	}, nil
}

func (g *RedisGate) Resolve(ctx context.Context, accessToken string) (*Identity, error) {
	claims, err := g.JWT.ParseAccessToken(accessToken)
	if err != nil {
		return nil, ErrNoSession
	}
	data, err := g.RDB.HGetAll(ctx, sessionKey(claims.UserID)).Result()
	if err != nil || len(data) == 0 || data["sid"] != claims.SessionID {
		return nil, ErrNoSession
	}
	return &Identity{
		UserID:   data["user_id"],
		Username: data["username"],
		Email:    data["email"],
		Language: data["lang"],
	}, nil
}

func (g *RedisGate) Destroy(ctx context.Context, userID string) error {
	return g.RDB.Del(ctx, sessionKey(userID)).Err()
}

func (g *RedisGate) SetLanguage(ctx context.Context, userID, code string) error {
	key := sessionKey(userID)
	n, err := g.RDB.Exists(ctx, key).Result()
	if err != nil || n == 0 {
		return err
	}
	return g.RDB.HSet(ctx, key, "lang", code).Err()
}

var _ Gate = (*RedisGate)(nil)

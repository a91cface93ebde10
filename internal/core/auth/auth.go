// Package auth provides HMAC-based API key authentication for gRPC services.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// contextKey is a typed key for context values to avoid collisions.
type contextKey string

// apiKeyIDKey is the context key for the authenticated API key ID.
const apiKeyIDKey = contextKey("api_key_id")

// Queries defines the database operations needed for authentication.
// Implemented by *db.Queries.
type Queries interface {
	Get(ctx context.Context, name string, dest any, args ...any) error
	Exec(ctx context.Context, name string, args ...any) (sql.Result, error)
}

// Authenticator validates API keys using HMAC-SHA256 signatures.
// Holds in-memory secret map for O(1) lookup and queries for key verification.
type Authenticator struct {
	secrets   map[string][]byte
	queries   Queries
	logger    *slog.Logger
	onFailure func()
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithLogger sets the logger for rejected requests.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Authenticator) { a.logger = logger }
}

// WithFailureHook is called once per rejected request (e.g. a metrics counter).
func WithFailureHook(fn func()) Option {
	return func(a *Authenticator) { a.onFailure = fn }
}

// NewAuthenticator creates an authenticator with HMAC secrets and query interface.
func NewAuthenticator(secrets map[string][]byte, queries Queries, opts ...Option) *Authenticator {
	a := &Authenticator{
		secrets:   secrets,
		queries:   queries,
		logger:    slog.Default(),
		onFailure: func() {},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Authenticate validates an API key and returns its api_key_id.
func (a *Authenticator) Authenticate(ctx context.Context, apiKey string) (string, error) {
	secretID, _, err := ParseAPIKey(apiKey)
	if err != nil {
		return "", err
	}

	secret, ok := a.secrets[secretID]
	if !ok {
		return "", ErrUnknownKey
	}

	// key_hash is unique, so at most one row matches.
	var row struct {
		APIKeyID   string       `db:"api_key_id"`
		RevokedAt  sql.NullTime `db:"revoked_at"`
		LastUsedAt sql.NullTime `db:"last_used_at"`
	}
	err = a.queries.Get(ctx, "get-api-key-by-hash", &row, ComputeHMAC(secret, apiKey))
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrInvalidKey
	}
	if err != nil {
		return "", fmt.Errorf("database error: %w", err)
	}

	if row.RevokedAt.Valid {
		return "", ErrKeyRevoked
	}

	// 1-minute throttle reduces write amplification for busy clients
	if shouldUpdateLastUsed(row.LastUsedAt) {
		_, _ = a.queries.Exec(ctx, "update-last-used", time.Now().UTC(), row.APIKeyID)
	}

	return row.APIKeyID, nil
}

// CreateKey generates a key under the newest configured secret and stores
// its HMAC. The plaintext key is returned once and never stored.
func (a *Authenticator) CreateKey(ctx context.Context, label string) (id, key string, err error) {
	if len(a.secrets) == 0 {
		return "", "", ErrNoSecrets
	}
	// Secret IDs are UUIDv7 hex, so the greatest is the most recent.
	ids := make([]string, 0, len(a.secrets))
	for sid := range a.secrets {
		ids = append(ids, sid)
	}
	sort.Strings(ids)
	secretID := ids[len(ids)-1]

	key, err = GenerateAPIKey(secretID)
	if err != nil {
		return "", "", err
	}
	id = uuid.Must(uuid.NewV7()).String()
	if _, err := a.queries.Exec(ctx, "insert-api-key", id, label, ComputeHMAC(a.secrets[secretID], key), time.Now().UTC()); err != nil {
		return "", "", fmt.Errorf("store API key: %w", err)
	}
	return id, key, nil
}

// RevokeKey marks a key revoked; revoked keys fail with PermissionDenied.
func (a *Authenticator) RevokeKey(ctx context.Context, id string) error {
	res, err := a.queries.Exec(ctx, "revoke-api-key", time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("revoke API key %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("revoke API key %s: %w", id, ErrInvalidKey)
	}
	return nil
}

// shouldUpdateLastUsed implements 1-minute throttle to reduce write amplification.
func shouldUpdateLastUsed(lastUsed sql.NullTime) bool {
	if !lastUsed.Valid {
		return true
	}
	return time.Since(lastUsed.Time) > time.Minute
}

// UnaryInterceptor returns gRPC interceptor that authenticates requests.
// Methods listed in public (full method names) skip authentication.
func (a *Authenticator) UnaryInterceptor(public ...string) grpc.UnaryServerInterceptor {
	skip := make(map[string]bool, len(public))
	for _, m := range public {
		skip[m] = true
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if skip[info.FullMethod] {
			return handler(ctx, req)
		}

		keyID, err := a.authenticate(ctx)
		if err != nil {
			a.onFailure()
			a.logger.WarnContext(ctx, "request rejected", "method", info.FullMethod, "error", err)
			return nil, toStatus(err)
		}

		return handler(context.WithValue(ctx, apiKeyIDKey, keyID), req)
	}
}

func (a *Authenticator) authenticate(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", ErrMissingKey
	}
	keys := md.Get("x-api-key")
	if len(keys) == 0 {
		return "", ErrMissingKey
	}
	return a.Authenticate(ctx, keys[0])
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, ErrKeyRevoked):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, ErrMissingKey), errors.Is(err, ErrInvalidKeyFormat),
		errors.Is(err, ErrUnknownKey), errors.Is(err, ErrInvalidKey):
		return status.Error(codes.Unauthenticated, err.Error())
	default:
		// Database errors: the key may be fine, so don't report it as invalid.
		return status.Error(codes.Unavailable, err.Error())
	}
}

// APIKeyIDFromContext extracts the authenticated API key ID from context.
// Returns empty string if not found.
func APIKeyIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(apiKeyIDKey).(string); ok {
		return id
	}
	return ""
}

package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/memora/reflections/internal/pkg/persistence"
	"github.com/memora/reflections/internal/pkg/utils"
	"github.com/pkg/errors"
)

// SessionLoader loads a session row by token, nil result means no session
type SessionLoader interface {
	LoadSession(ctx context.Context, token string) (*persistence.Session, error)
}

// Resolver maps a request session token to a user ID
type Resolver struct {
	loader SessionLoader
}

// NewResolver creates Resolver instance
func NewResolver(loader SessionLoader) (*Resolver, error) {
	if loader == nil {
		return nil, errors.New("no session loader")
	}
	return &Resolver{loader: loader}, nil
}

// ResolveUser extracts the session token from the request and returns
// the owning user ID. Missing, unknown or expired token gives ErrUnauthorized.
func (r *Resolver) ResolveUser(ctx context.Context, req *http.Request) (string, error) {
	token := extractToken(req)
	if token == "" {
		return "", utils.ErrUnauthorized
	}
	s, err := r.loader.LoadSession(ctx, token)
	if err != nil {
		return "", fmt.Errorf("can't load session: %w", err)
	}
	if s == nil || s.Expires.Before(time.Now()) {
		return "", utils.ErrUnauthorized
	}
	return s.UserID, nil
}

func extractToken(req *http.Request) string {
	auth := req.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if c, err := req.Cookie("session_token"); err == nil {
		return c.Value
	}
	return ""
}

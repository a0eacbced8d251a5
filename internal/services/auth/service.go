package auth

import (
	"context"
	"errors"

	"racing-career/server/internal/services/career"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
)

// Service issues and validates session tokens. A token's subject is the
// career username it was issued for.
type Service interface {
	// StartSession makes sure a career exists for username and returns a
	// signed token for it along with the career record.
	StartSession(ctx context.Context, username string) (string, *career.PlayerProgress, error)
	GenerateToken(username string) (string, error)
	ValidateToken(tokenString string) (*jwt.RegisteredClaims, error)
}

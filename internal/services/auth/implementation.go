package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"racing-career/server/internal/services/career"
	"racing-career/server/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const tokenIssuer = "racing-career"

type authService struct {
	config    config.Config
	logger    *zap.Logger
	careerSvc career.Service
}

func NewAuthService(cfg config.Config, logger *zap.Logger, careerSvc career.Service) Service {
	return &authService{
		config:    cfg,
		logger:    logger,
		careerSvc: careerSvc,
	}
}

func (s *authService) StartSession(ctx context.Context, username string) (string, *career.PlayerProgress, error) {
	player, err := s.careerSvc.CreatePlayer(ctx, username)
	if err != nil {
		return "", nil, err
	}
	token, err := s.GenerateToken(player.Username)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	s.logger.Debug("Session started", zap.String("username", player.Username))
	return token, player, nil
}

func (s *authService) GenerateToken(username string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   username,
		ExpiresAt: jwt.NewNumericDate(now.Add(s.config.JWT.SessionExpiration)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWT.Secret))
}

func (s *authService) ValidateToken(tokenString string) (*jwt.RegisteredClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.config.JWT.Secret), nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

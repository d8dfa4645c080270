package services

import (
	"context"

	"github.com/golang-jwt/jwt/v5"

	"github.com/easytalk/easytalk-backend/internal/apierr"
	"github.com/easytalk/easytalk-backend/internal/ctxutil"
	"github.com/easytalk/easytalk-backend/internal/logger"
)

// AuthService verifies bearer credentials and resolves them to a user
// id. Issuing tokens, password handling and user registration live in
// the identity provider, not here.
type AuthService interface {
	// VerifyToken returns the user id for a valid token, or an
	// unauthorized error for anything expired, malformed, or signed
	// with the wrong key.
	VerifyToken(tokenString string) (string, error)

	// SetContextFromToken verifies the token and attaches the caller's
	// identity to the request context.
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
	log       *logger.Logger
	secretKey []byte
}

func NewAuthService(log *logger.Logger, secretKey string) AuthService {
	return &authService{
		log:       log.With("service", "AuthService"),
		secretKey: []byte(secretKey),
	}
}

func (s *authService) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apierr.Unauthorized("unexpected signing method %v", t.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", apierr.Unauthorized("invalid or expired token: %v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", apierr.Unauthorized("unexpected token claims")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", apierr.Unauthorized("token has no subject")
	}
	return sub, nil
}

func (s *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	userID, err := s.VerifyToken(tokenString)
	if err != nil {
		return ctx, err
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
	}), nil
}

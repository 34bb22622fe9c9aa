package service

import (
	"fmt"
	"time"

	"github.com/Payphone-Digital/factbook/internal/constants"
	apperrors "github.com/Payphone-Digital/factbook/internal/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTService verifies the HS256 access tokens issued for this service. Only
// the subject (a user id) and the expiry are significant.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTService(secret string, ttl time.Duration) *JWTService {
	return &JWTService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// GenerateToken signs an access token for userID.
func (s *JWTService) GenerateToken(userID string) (string, time.Time, error) {
	if err := uuid.Validate(userID); err != nil {
		return "", time.Time{}, fmt.Errorf("subject must be a user id: %w", err)
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    constants.AppName,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateToken returns the subject of a valid token.
func (s *JWTService) ValidateToken(tokenString string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", apperrors.WrapError(apperrors.ErrInvalidToken, err)
	}

	if uuid.Validate(claims.Subject) != nil {
		return "", apperrors.ErrInvalidToken
	}
	return claims.Subject, nil
}

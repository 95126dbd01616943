package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// TokenClaims identifies the user and the access token row a JWT was issued for.
type TokenClaims struct {
	UserID  uuid.UUID
	TokenID uuid.UUID
}

// GenerateToken creates a signed JWT whose subject is the user and whose jti
// is the access token row.
func GenerateToken(secret string, userID, tokenID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        tokenID.String(),
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates the signature and expiry and returns the embedded ids.
func ParseToken(secret, tokenString string) (TokenClaims, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return TokenClaims{}, err
	}
	if !token.Valid {
		return TokenClaims{}, jwt.ErrTokenInvalidClaims
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return TokenClaims{}, errors.Wrap(jwt.ErrTokenInvalidClaims, "subject")
	}
	tokenID, err := uuid.Parse(claims.ID)
	if err != nil {
		return TokenClaims{}, errors.Wrap(jwt.ErrTokenInvalidClaims, "jti")
	}

	return TokenClaims{UserID: userID, TokenID: tokenID}, nil
}

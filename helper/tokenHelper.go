package helper

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type SignedDetails struct {
	Email string `json:"email"`
	Uid   string `json:"uid"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies the bearer tokens used on protected
// routes.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    24 * time.Hour,
	}
}

// GenerateToken creates a signed JWT carrying the user's identity and role.
func (tm *TokenManager) GenerateToken(uid, email, role string) (string, error) {
	claims := &SignedDetails{
		Email: email,
		Uid:   uid,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tm.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
}

// ValidateToken checks signature and expiry and returns the embedded claims.
func (tm *TokenManager) ValidateToken(signedToken string) (*SignedDetails, error) {
	token, err := jwt.ParseWithClaims(
		signedToken,
		&SignedDetails{},
		func(token *jwt.Token) (interface{}, error) {
			return tm.secret, nil
		},
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SignedDetails)
	if !ok || !token.Valid {
		return nil, errors.New("the token is invalid")
	}

	if claims.ExpiresAt.Time.Before(time.Now()) {
		return nil, errors.New("token is expired")
	}

	return claims, nil
}

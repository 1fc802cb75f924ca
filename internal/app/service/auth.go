package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// AuthIface verifies operator tokens for the stats endpoints.
type AuthIface interface {
	ParseRawJWT(tokenString string) (*Claims, error)
}

// Claims are the claims carried by an operator token.
type Claims struct {
	jwt.RegisteredClaims
	// Scope must equal StatsScope for the token to be accepted.
	Scope string `json:"scope"`
}

// TokenExp is the lifetime of an issued operator token.
const TokenExp = 24 * time.Hour

// StatsScope grants read access to link statistics.
const StatsScope = "links:stats"

const tokenIssuer = "shortlinks"

// Auth issues and verifies HS256 operator tokens.
type Auth struct {
	secret []byte
}

func NewAuth(secret string) *Auth {
	return &Auth{
		secret: []byte(secret),
	}
}

// BuildJWTString issues a stats token for subject.
func (a *Auth) BuildJWTString(subject string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenExp)),
		},
		Scope: StatsScope,
	})

	return token.SignedString(a.secret)
}

func (a *Auth) ParseRawJWT(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token or claims")
	}
	if claims.Scope != StatsScope {
		return nil, fmt.Errorf("token scope %q does not grant stats access", claims.Scope)
	}

	return claims, nil
}

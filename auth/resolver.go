// Package auth resolves who is on the other end of a connection.
// Gameplay itself is identity-agnostic; transports resolve an Identity
// once at connect time and hand it to the hub.
package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

// Identity is a stable user id plus a display name shown to opponents.
type Identity struct {
	UserID      string
	DisplayName string
}

var (
	ErrNoCredentials   = errors.New("auth: no credentials supplied")
	ErrInvalidToken    = errors.New("auth: token invalid or expired")
	ErrIncompleteToken = errors.New("auth: token missing user id")
)

// Resolver extracts an Identity from an incoming HTTP request.
type Resolver interface {
	Resolve(r *http.Request) (Identity, error)
}

// Claims is the token payload issued by the account system.
type Claims struct {
	jwt.RegisteredClaims
	UserID      string `json:"uid"`
	DisplayName string `json:"name"`
}

// JWTResolver validates HMAC-signed bearer tokens. The token may arrive
// in the Authorization header or, for browser WebSocket clients that
// cannot set headers, in the "token" query parameter.
type JWTResolver struct {
	secret []byte
}

func NewJWTResolver(secret string) *JWTResolver {
	return &JWTResolver{secret: []byte(secret)}
}

func (j *JWTResolver) Resolve(r *http.Request) (Identity, error) {
	tokenStr := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if tokenStr == "" {
		tokenStr = r.URL.Query().Get("token")
	}
	if tokenStr == "" {
		return Identity{}, ErrNoCredentials
	}

	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKey
		}
		return j.secret, nil
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, keyFunc)
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == "" {
		return Identity{}, ErrIncompleteToken
	}

	name := claims.DisplayName
	if name == "" {
		name = claims.UserID
	}
	return Identity{UserID: claims.UserID, DisplayName: name}, nil
}

// QueryResolver trusts user/name query parameters as-is. Development
// only: it lets two browser tabs play each other without an account
// system.
type QueryResolver struct{}

func (QueryResolver) Resolve(r *http.Request) (Identity, error) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		return Identity{}, ErrNoCredentials
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = userID
	}
	return Identity{UserID: userID, DisplayName: name}, nil
}

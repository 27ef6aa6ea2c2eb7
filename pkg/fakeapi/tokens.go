package fakeapi

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type claims struct {
	Kind string `json:"type"`
	jwt.RegisteredClaims
}

type tokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func newTokenIssuer(secret []byte, ttl time.Duration) *tokenIssuer {
	return &tokenIssuer{secret: secret, ttl: ttl}
}

func (t *tokenIssuer) issue(userID data.ID) (data.AuthTokens, error) {
	access, err := t.sign(userID, "access", t.ttl)
	if err != nil {
		return data.AuthTokens{}, err
	}
	refresh, err := t.sign(userID, "refresh", 7*24*time.Hour)
	if err != nil {
		return data.AuthTokens{}, err
	}
	return data.AuthTokens{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

func (t *tokenIssuer) sign(userID data.ID, kind string, ttl time.Duration) (string, error) {
	now := time.Now()
	c := claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
}

func (t *tokenIssuer) parse(raw, kind string) (data.ID, error) {
	var c claims
	tok, err := jwt.ParseWithClaims(raw, &c, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !tok.Valid {
		return "", errors.New("invalid token")
	}
	if c.Kind != kind {
		return "", errors.New("wrong token type")
	}
	return data.ID(c.Subject), nil
}

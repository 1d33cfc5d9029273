package service

import (
	"errors"
	"time"

	"github.com/readrover/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuerName = "readrover"
	audienceAdmin   = "admin"
	audienceUser    = "user"
)

// tokenIssuer HS256 签发与校验；audience 隔离管理端与顾客端 Token
type tokenIssuer struct {
	secret   []byte
	ttl      time.Duration
	audience string
}

func newTokenIssuer(cfg config.JWTConfig, fallbackHours int, audience string) tokenIssuer {
	hours := cfg.ExpireHours
	if hours <= 0 {
		hours = fallbackHours
	}
	return tokenIssuer{
		secret:   []byte(cfg.SecretKey),
		ttl:      time.Duration(hours) * time.Hour,
		audience: audience,
	}
}

// registered 生成本次签发的标准声明
func (t tokenIssuer) registered(subject string) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Issuer:    tokenIssuerName,
		Subject:   subject,
		Audience:  jwt.ClaimStrings{t.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
}

func (t tokenIssuer) sign(claims jwt.Claims) (string, time.Time, error) {
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return "", time.Time{}, errors.New("token expiry missing")
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp.Time, nil
}

func (t tokenIssuer) parse(raw string, claims jwt.Claims) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(t.audience),
		jwt.WithIssuer(tokenIssuerName),
	)
	token, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil {
		return errors.Join(ErrInvalidToken, err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

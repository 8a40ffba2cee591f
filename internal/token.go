package internal

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const TokenTTL = 24 * time.Hour

// ErrInvalidToken covers every reason a token is rejected.
var ErrInvalidToken = errors.New("invalid or missing token")

// Claims is the signed payload: sub, role, exp.
type Claims struct {
	Subject   int64            `json:"sub"`
	Role      Role             `json:"role"`
	ExpiresAt *jwt.NumericDate `json:"exp"`
}

func (c Claims) GetExpirationTime() (*jwt.NumericDate, error) { return c.ExpiresAt, nil }
func (c Claims) GetIssuedAt() (*jwt.NumericDate, error) { return nil, nil }
func (c Claims) GetNotBefore() (*jwt.NumericDate, error) { return nil, nil }
func (c Claims) GetIssuer() (string, error) { return "", nil }
func (c Claims) GetSubject() (string, error) { return "", nil }
func (c Claims) GetAudience() (jwt.ClaimStrings, error) { return nil, nil }

type TokenService struct {
	secret []byte
	now    func() time.Time
}

type TokenOption func(*TokenService)

func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

func NewTokenService(secret []byte, opts ...TokenOption) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret is empty")
	}
	s := &TokenService{secret: append([]byte(nil), secret...), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

func (s *TokenService) Issue(subject int64, role Role) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Subject:   subject,
		Role:      role,
		ExpiresAt: jwt.NewNumericDate(s.now().Add(TokenTTL)),
	})
	return tok.SignedString(s.secret)
}

func (s *TokenService) Verify(token string) (Claims, error) {
	var cl Claims
	tok, err := jwt.ParseWithClaims(token, &cl, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	return cl, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", ErrInvalidToken
	}
	tok := strings.TrimSpace(parts[1])
	if tok == "" {
		return "", ErrInvalidToken
	}
	return tok, nil
}

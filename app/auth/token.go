// Package auth issues and verifies the HS256 bearer tokens handed out at login.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	MinSecretLength      = 16
	DefaultExpiryMinutes = 120
	clockSkew            = time.Minute
)

var ErrInvalidToken = errors.New("invalid token")

type Options struct {
	Issuer        string
	Audience      string
	Secret        string
	ExpiryMinutes int
}

// Claims mirrors the claim names ASP.NET style clients expect
type Claims struct {
	UniqueName  string   `json:"unique_name"`
	NameID      string   `json:"nameid"`
	Email       string   `json:"email,omitempty"`
	DisplayName string   `json:"display_name,omitempty"`
	Roles       []string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Subject is the account a token is issued for
type Subject struct {
	ID          string
	UserName    string
	Email       string
	DisplayName string
	Roles       []string
}

// Principal is the caller identity recovered from a verified token
type Principal struct {
	UserID      string
	UserName    string
	Email       string
	DisplayName string
	Roles       []string
}

func (p *Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type Token struct {
	Value     string
	ExpiresAt time.Time
}

type TokenService struct {
	issuer   string
	audience string
	key      []byte
	expiry   time.Duration
	now      func() time.Time
}

func NewTokenService(opts Options) (*TokenService, error) {
	if len(opts.Secret) < MinSecretLength {
		return nil, fmt.Errorf("JWT secret must be configured and at least %d characters long", MinSecretLength)
	}

	expiryMinutes := opts.ExpiryMinutes
	if expiryMinutes <= 0 {
		expiryMinutes = DefaultExpiryMinutes
	}

	return &TokenService{
		issuer:   opts.Issuer,
		audience: opts.Audience,
		key:      []byte(opts.Secret),
		expiry:   time.Duration(expiryMinutes) * time.Minute,
		now:      time.Now,
	}, nil
}

func (s *TokenService) Issue(subject Subject) (Token, error) {
	now := s.now().UTC()
	expiresAt := now.Add(s.expiry)

	claims := Claims{
		UniqueName:  firstNonEmpty(subject.UserName, subject.Email, subject.ID),
		NameID:      subject.ID,
		Email:       subject.Email,
		DisplayName: subject.DisplayName,
		Roles:       subject.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.ID,
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return Token{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return Token{Value: signed, ExpiresAt: expiresAt}, nil
}

func (s *TokenService) Verify(tokenString string) (*Principal, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(clockSkew),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &Principal{
		UserID:      claims.Subject,
		UserName:    claims.UniqueName,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
		Roles:       claims.Roles,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

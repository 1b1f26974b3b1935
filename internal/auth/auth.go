// Package auth validates and issues the HMAC-signed bearer tokens accepted by the API
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/google/uuid"
	jose "gopkg.in/go-jose/go-jose.v2"
	"gopkg.in/go-jose/go-jose.v2/jwt"
)

// MinSecretLength is the shortest accepted HS256 secret
const MinSecretLength = 32

// ErrInvalidToken is returned when a token fails validation
var ErrInvalidToken = errors.New("invalid token")

// Settings configures token validation and issuing
type Settings struct {
	Secret   string
	Issuer   string
	Audience string
}

func (s Settings) check() error {
	if len(s.Secret) < MinSecretLength {
		return fmt.Errorf("jwt secret must be at least %d characters", MinSecretLength)
	}
	if s.Issuer == "" || s.Audience == "" {
		return errors.New("jwt issuer and audience are required")
	}
	return nil
}

// NewValidator builds a validator checking signature, issuer, audience and expiry
func NewValidator(s Settings) (*validator.Validator, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	key := []byte(s.Secret)
	return validator.New(
		func(ctx context.Context) (interface{}, error) { return key, nil },
		validator.HS256,
		s.Issuer,
		[]string{s.Audience},
		validator.WithAllowedClockSkew(time.Minute),
	)
}

// Subject validates token and returns its subject claim
func Subject(ctx context.Context, v *validator.Validator, token string) (string, error) {
	claims, err := v.ValidateToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	validated, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	return validated.RegisteredClaims.Subject, nil
}

// Issuer signs tokens the validator accepts. It backs the token CLI command and tests.
type Issuer struct {
	signer   jose.Signer
	issuer   string
	audience string
	now      func() time.Time
}

// NewIssuer creates an Issuer for s
func NewIssuer(s Settings) (*Issuer, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: []byte(s.Secret)},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return nil, fmt.Errorf("create signer: %w", err)
	}
	return &Issuer{signer: signer, issuer: s.Issuer, audience: s.Audience, now: time.Now}, nil
}

// Issue returns a compact JWT for subject that expires after ttl
func (i *Issuer) Issue(subject string, ttl time.Duration) (string, error) {
	now := i.now()
	claims := jwt.Claims{
		ID:       uuid.NewString(),
		Issuer:   i.issuer,
		Subject:  subject,
		Audience: jwt.Audience{i.audience},
		IssuedAt: jwt.NewNumericDate(now),
		Expiry:   jwt.NewNumericDate(now.Add(ttl)),
	}
	token, err := jwt.Signed(i.signer).Claims(claims).CompactSerialize()
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

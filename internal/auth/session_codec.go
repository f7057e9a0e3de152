package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/charlesng35/teamforge/internal/models"
	apperrors "github.com/charlesng35/teamforge/pkg/errors"
	"github.com/charlesng35/teamforge/pkg/metrics"
)

// DefaultSessionTTL is the lifetime of an issued session token.
const DefaultSessionTTL = 7 * 24 * time.Hour

// ErrMissingSecret is returned when no signing secret is configured.
var ErrMissingSecret = apperrors.ErrConfig.WithInternal(errors.New("session signing secret is not configured"))

// SessionConfig bundles the configuration required to build a SessionCodec.
type SessionConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
	Clock  func() time.Time
}

// SessionClaims identifies the caller of an authenticated request.
type SessionClaims struct {
	SubjectID string
	Role      models.AccountRole
	ExpiresAt time.Time
}

type tokenClaims struct {
	Role models.AccountRole `json:"role"`
	jwt.RegisteredClaims
}

// Validate is invoked by the jwt parser after the registered claims checks.
func (c *tokenClaims) Validate() error {
	if c.Subject == "" {
		return errors.New("missing subject")
	}
	if !c.Role.Valid() {
		return fmt.Errorf("unknown role %q", c.Role)
	}
	return nil
}

// SessionCodec issues and verifies signed session tokens. It holds the secret it
// was constructed with; there is no package level key.
type SessionCodec struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionCodec constructs a codec. A missing secret is a startup error.
func NewSessionCodec(cfg SessionConfig) (*SessionCodec, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	now := time.Now
	if cfg.Clock != nil {
		now = cfg.Clock
	}

	return &SessionCodec{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    ttl,
		now:    now,
	}, nil
}

// TTL returns the lifetime applied to issued tokens.
func (c *SessionCodec) TTL() time.Duration {
	if c == nil || c.ttl <= 0 {
		return DefaultSessionTTL
	}
	return c.ttl
}

// Issue signs a token for subjectID carrying role.
func (c *SessionCodec) Issue(subjectID string, role models.AccountRole) (string, error) {
	if c == nil || len(c.secret) == 0 {
		return "", ErrMissingSecret
	}
	if subjectID == "" {
		return "", errors.New("session: subject id is required")
	}
	if !role.Valid() {
		return "", fmt.Errorf("session: unknown role %q", role)
	}

	now := c.clock()
	claims := &tokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.TTL())),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("session: sign token: %w", err)
	}
	metrics.SessionsIssued.WithLabelValues(string(role)).Inc()
	return signed, nil
}

// Verify returns the claims carried by token and true, or false when the token is
// malformed, tampered with, expired or carries claims that do not parse.
func (c *SessionCodec) Verify(token string) (*SessionClaims, bool) {
	claims, err := c.parse(token)
	if err != nil {
		metrics.SessionVerifications.WithLabelValues("invalid").Inc()
		return nil, false
	}
	metrics.SessionVerifications.WithLabelValues("valid").Inc()
	return claims, true
}

func (c *SessionCodec) parse(token string) (*SessionClaims, error) {
	if c == nil || len(c.secret) == 0 {
		return nil, ErrMissingSecret
	}
	if token == "" {
		return nil, errors.New("session: token is empty")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.clock),
		jwt.WithExpirationRequired(),
		// Non canonical base64 would let a changed trailing character decode to
		// the same signature bytes.
		jwt.WithStrictDecoding(),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	var claims tokenClaims
	_, err := jwt.NewParser(opts...).ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("session: parse token: %w", err)
	}

	return &SessionClaims{
		SubjectID: claims.Subject,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (c *SessionCodec) clock() time.Time {
	return c.now()
}

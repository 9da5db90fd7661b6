package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/geocoder89/bloghub/internal/domain/user"
	"github.com/golang-jwt/jwt/v5"
)

const bearerPrefix = "Bearer "

// Verification failures. Callers log which one fired but reject the
// request the same way for all of them.
var (
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrExpired          = errors.New("token expired")
	ErrMalformed        = errors.New("malformed token")
	ErrUnsupported      = errors.New("unsupported token")
)

type Claims struct {
	Role string `json:"auth"`
	jwt.RegisteredClaims
}

// Username is the token subject.
func (c *Claims) Username() string {
	return c.Subject
}

type Manager struct {
	key []byte
	ttl time.Duration
}

// NewManager decodes the base64-encoded signing secret once at startup.
func NewManager(secretBase64 string, ttl time.Duration) (*Manager, error) {
	key, err := base64.StdEncoding.DecodeString(secretBase64)

	if err != nil {
		return nil, fmt.Errorf("decode jwt secret: %w", err)
	}

	if len(key) == 0 {
		return nil, errors.New("jwt secret is empty")
	}

	return &Manager{key: key, ttl: ttl}, nil
}

// Issue signs an HS256 credential carrying the username as subject and the
// role under the "auth" claim, valid from now for the configured TTL.
func (m *Manager) Issue(username string, role user.Role) (string, error) {
	now := time.Now().UTC()

	claims := Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(m.key)
}

// Verify parses the token, checks the signature against the configured key
// and checks expiry, mapping parse failures onto the typed errors above.
func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256

		_, ok := t.Method.(*jwt.SigningMethodHMAC)

		if !ok {
			return nil, ErrUnsupported
		}
		return m.key, nil
	})

	if err != nil {
		return nil, classifyParseError(err)
	}

	claims, ok := token.Claims.(*Claims)

	if !ok || !token.Valid {
		return nil, ErrMalformed
	}

	return claims, nil
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, ErrUnsupported), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrUnsupported
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	default:
		return ErrMalformed
	}
}

// ExtractBearer strips the "Bearer " prefix from an Authorization header
// value. False when the header is absent or the prefix does not match.
func ExtractBearer(headerValue string) (string, bool) {
	if !strings.HasPrefix(headerValue, bearerPrefix) {
		return "", false
	}

	raw := strings.TrimSpace(strings.TrimPrefix(headerValue, bearerPrefix))

	if raw == "" {
		return "", false
	}

	return raw, true
}

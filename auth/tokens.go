package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	// Third-party library for JWT handling. `jwt/v5` indicates version 5.
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/user/timemanager-go/config"
	"github.com/user/timemanager-go/domain"
)

// Constants defining token types.
const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
	issuer           = "timemanager"
)

var (
	// ErrInvalidToken covers bad signatures, expiry and malformed tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrWrongTokenType is returned when a refresh token is used as an access token or vice versa.
	ErrWrongTokenType = errors.New("wrong token type")
)

// CustomClaims embeds jwt.RegisteredClaims and adds the fields the API needs.
// The registered `sub` holds the user id, `jti` a random id used for revocation.
type CustomClaims struct {
	Role      domain.Role `json:"role,omitempty"`
	TokenType string      `json:"type"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *CustomClaims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// TokenPair is what login, registration and refresh hand back.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// TokenManager signs and verifies HS256 tokens with the configured secret.
type TokenManager struct {
	cfg config.AuthConfig
	now func() time.Time
}

// NewTokenManager creates a TokenManager.
func NewTokenManager(cfg config.AuthConfig) *TokenManager {
	return &TokenManager{cfg: cfg, now: time.Now}
}

// IssuePair creates an access token carrying the user's role and a refresh
// token carrying only its id.
func (m *TokenManager) IssuePair(user *domain.User) (*TokenPair, error) {
	access, expiresAt, err := m.sign(user.ID, user.Role, tokenTypeAccess, m.cfg.AccessTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, _, err := m.sign(user.ID, "", tokenTypeRefresh, m.cfg.RefreshTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: expiresAt}, nil
}

func (m *TokenManager) sign(userID int64, role domain.Role, tokenType string, ttl time.Duration) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(ttl)
	claims := &CustomClaims{
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies signature, expiry and issuer, then checks the token type.
func (m *TokenManager) Parse(tokenString, expectedType string) (*CustomClaims, error) {
	claims := &CustomClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Ensure the token's signing method is HMAC, as expected.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.cfg.JWTSecret), nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.TokenType != expectedType {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrWrongTokenType, expectedType, claims.TokenType)
	}
	if _, err := claims.UserID(); err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return claims, nil
}

// ParseAccess is Parse for access tokens.
func (m *TokenManager) ParseAccess(tokenString string) (*CustomClaims, error) {
	return m.Parse(tokenString, tokenTypeAccess)
}

// ParseRefresh is Parse for refresh tokens.
func (m *TokenManager) ParseRefresh(tokenString string) (*CustomClaims, error) {
	return m.Parse(tokenString, tokenTypeRefresh)
}

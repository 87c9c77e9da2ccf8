package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/yigit/rollcall/internal/app/models"
)

// JWT errors. Callers outside this package must collapse all of them into a
// single unauthenticated outcome; they are distinguished here for logging.
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token expired")
	ErrInvalidSignature = errors.New("token signature invalid")
	ErrInvalidFormat    = errors.New("invalid token format")
)

// DefaultAccessTokenExp is used when the configuration leaves the TTL unset
const DefaultAccessTokenExp = 30 * time.Minute

// JWTConfig defines JWT configuration settings
type JWTConfig struct {
	SecretKey      string
	AccessTokenExp time.Duration
	TokenIssuer    string
	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

// JWTService handles JWT operations
type JWTService struct {
	config JWTConfig
}

// NewJWTService creates a new JWT service
func NewJWTService(config JWTConfig) *JWTService {
	if config.AccessTokenExp <= 0 {
		config.AccessTokenExp = DefaultAccessTokenExp
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &JWTService{
		config: config,
	}
}

// Identity is the set of facts a token vouches for
type Identity struct {
	Username        string
	Role            models.RoleType
	OrgCode         string
	InstitutionName string
	InstitutionType models.InstitutionType
}

// Claims defines JWT token content
type Claims struct {
	Role            string `json:"role"`
	OrgCode         string `json:"org_code"`
	InstitutionName string `json:"institution_name,omitempty"`
	InstitutionType string `json:"institution_type,omitempty"`
	jwt.RegisteredClaims
}

// Username returns the subject of the token
func (c *Claims) Username() string {
	return c.Subject
}

// RoleType returns the role claim as a models.RoleType
func (c *Claims) RoleType() models.RoleType {
	return models.RoleType(c.Role)
}

// AccessTokenTTL returns the configured default lifetime
func (s *JWTService) AccessTokenTTL() time.Duration {
	return s.config.AccessTokenExp
}

// IssueAccessToken signs a token for identity with the configured lifetime
func (s *JWTService) IssueAccessToken(identity Identity) (string, time.Time, error) {
	return s.Issue(identity, s.config.AccessTokenExp)
}

// Issue signs a token for identity that expires after ttl
func (s *JWTService) Issue(identity Identity, ttl time.Duration) (string, time.Time, error) {
	now := s.config.Now()
	expiresAt := now.Add(ttl)

	claims := &Claims{
		Role:            string(identity.Role),
		OrgCode:         identity.OrgCode,
		InstitutionName: identity.InstitutionName,
		InstitutionType: string(identity.InstitutionType),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.config.TokenIssuer,
			Subject:   identity.Username,
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken validates a token and returns its claims
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrInvalidFormat
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.config.Now),
		jwt.WithExpirationRequired(),
	}
	if s.config.TokenIssuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.TokenIssuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.SecretKey), nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrInvalidFormat
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.OrgCode == "" || !claims.RoleType().Valid() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExtractBearerToken extracts the token from the Authorization header
func ExtractBearerToken(authHeader string) (string, error) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", ErrInvalidFormat
	}

	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrInvalidFormat
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidFormat
	}
	return token, nil
}

package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/rollcall/internal/app/models"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestJWTService(clock *fakeClock) *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: 30 * time.Minute,
		TokenIssuer:    "rollcall.test",
		Now:            clock.Now,
	})
}

var testIdentity = Identity{
	Username:        "admin",
	Role:            models.RoleAdmin,
	OrgCode:         "SCH-STMARY-AB12CD",
	InstitutionName: "St. Mary's School",
	InstitutionType: models.InstitutionSchool,
}

func TestIssueAndValidate(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	svc := newTestJWTService(clock)

	token, expiresAt, err := svc.IssueAccessToken(testIdentity)
	require.NoError(t, err)
	assert.WithinDuration(t, clock.now.Add(30*time.Minute), expiresAt, time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username())
	assert.Equal(t, models.RoleAdmin, claims.RoleType())
	assert.Equal(t, "SCH-STMARY-AB12CD", claims.OrgCode)
	assert.Equal(t, "St. Mary's School", claims.InstitutionName)
	assert.Equal(t, "school", claims.InstitutionType)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateExpiredToken(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	svc := newTestJWTService(clock)

	token, _, err := svc.Issue(testIdentity, time.Minute)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateWrongKey(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	token, _, err := newTestJWTService(clock).IssueAccessToken(testIdentity)
	require.NoError(t, err)

	other := NewJWTService(JWTConfig{SecretKey: "rotated", TokenIssuer: "rollcall.test", Now: clock.Now})
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestValidateTamperedPayload(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	svc := newTestJWTService(clock)
	token, _, err := svc.IssueAccessToken(testIdentity)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	forged, _, err := svc.IssueAccessToken(Identity{Username: "admin", Role: models.RoleAdmin, OrgCode: "CLG-OTHER-ZZZZZZ"})
	require.NoError(t, err)
	parts[1] = strings.Split(forged, ".")[1]

	_, err = svc.ValidateToken(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestValidateRejectsOtherAlgorithms(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	svc := newTestJWTService(clock)

	claims := &Claims{
		Role:    "admin",
		OrgCode: "SCH-STMARY-AB12CD",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			Issuer:    "rollcall.test",
			ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(unsigned)
	assert.Error(t, err)
}

func TestValidateRequiresIdentityClaims(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	svc := newTestJWTService(clock)

	token, _, err := svc.IssueAccessToken(Identity{Username: "admin", Role: "superuser", OrgCode: "SCH-A-B"})
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractBearerToken(t *testing.T) {
	token, err := ExtractBearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	token, err = ExtractBearerToken("bearer  abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	for _, header := range []string{"", "abc.def.ghi", "Basic Zm9vOmJhcg==", "Bearer "} {
		_, err := ExtractBearerToken(header)
		assert.ErrorIs(t, err, ErrInvalidFormat, header)
	}
}

func TestGenerateOpaqueToken(t *testing.T) {
	a, err := GenerateOpaqueToken(InviteTokenBytes)
	require.NoError(t, err)
	b, err := GenerateOpaqueToken(InviteTokenBytes)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Len(t, a, 43)
	assert.NotContains(t, a, "=")
	assert.NotContains(t, a, "+")
	assert.NotContains(t, a, "/")
}

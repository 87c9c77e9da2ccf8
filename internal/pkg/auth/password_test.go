package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/rollcall/internal/app/models"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher() *PasswordHasher {
	return NewPasswordHasher(bcrypt.MinCost, zerolog.Nop())
}

func TestHashAndVerify(t *testing.T) {
	h := newTestHasher()

	for _, pw := range []string{"admin123", "", "pässwörd", "日本語のパスワード", strings.Repeat("x", 200)} {
		digest, err := h.Hash(pw)
		require.NoError(t, err)
		assert.Equal(t, models.SchemeBcrypt, digest.Scheme)
		assert.True(t, h.Verify(pw, digest), "password %q should verify", pw)
		assert.False(t, h.Verify(pw+"!", digest), "password %q+! should not verify", pw)
	}
}

func TestHashIsSalted(t *testing.T) {
	h := newTestHasher()

	first, err := h.Hash("admin123")
	require.NoError(t, err)
	second, err := h.Hash("admin123")
	require.NoError(t, err)

	assert.NotEqual(t, first.Hash, second.Hash)
	assert.True(t, h.Verify("admin123", first))
	assert.True(t, h.Verify("admin123", second))
}

func TestTruncationAtByteBoundary(t *testing.T) {
	h := newTestHasher()

	prefix := strings.Repeat("a", MaxPasswordBytes)
	long1 := prefix + "first-suffix"
	long2 := prefix + "second-suffix"

	d1, err := h.Hash(long1)
	require.NoError(t, err)
	d2, err := h.Hash(long2)
	require.NoError(t, err)

	assert.True(t, h.Verify(long2, d1))
	assert.True(t, h.Verify(long1, d2))
	assert.True(t, h.Verify(prefix, d1))
	assert.False(t, h.Verify(prefix[:MaxPasswordBytes-1], d1))
}

func TestTruncationSplitsMultiByteCharacter(t *testing.T) {
	h := newTestHasher()

	// 71 ASCII bytes followed by a 3-byte character: the cut lands inside it.
	pw := strings.Repeat("b", 71) + "€" + "tail"
	truncated := TruncatePassword(pw)
	require.Len(t, truncated, MaxPasswordBytes)

	digest, err := h.Hash(pw)
	require.NoError(t, err)
	assert.True(t, h.Verify(pw, digest))
	assert.True(t, h.Verify(strings.Repeat("b", 71)+"€other", digest))
	assert.False(t, h.Verify(strings.Repeat("b", 71), digest))
}

func TestVerifyMalformedDigest(t *testing.T) {
	h := newTestHasher()

	cases := []models.PasswordDigest{
		{Scheme: models.SchemeBcrypt, Hash: "not-a-hash"},
		{Scheme: models.SchemeBcrypt, Hash: ""},
		{Scheme: models.SchemeSHA256, Hash: "zz"},
		{Scheme: "argon2", Hash: "$argon2id$v=19$..."},
		{Scheme: "", Hash: "garbage"},
	}
	for _, digest := range cases {
		assert.NotPanics(t, func() {
			assert.False(t, h.Verify("admin123", digest))
		})
	}
}

func TestVerifyLegacySHA256(t *testing.T) {
	h := newTestHasher()
	sum := sha256.Sum256([]byte("admin123"))
	stored := hex.EncodeToString(sum[:])

	tagged := models.PasswordDigest{Scheme: models.SchemeSHA256, Hash: stored}
	untagged := models.PasswordDigest{Hash: stored}

	assert.True(t, h.Verify("admin123", tagged))
	assert.True(t, h.Verify("admin123", untagged))
	assert.False(t, h.Verify("admin124", untagged))
	assert.True(t, h.NeedsRehash(untagged))
}

func TestVerifyLegacyRuneTruncatedBcrypt(t *testing.T) {
	h := newTestHasher()

	// 80 two-byte characters: the legacy rule kept 72 characters (144 bytes),
	// of which bcrypt saw the first 72 bytes.
	pw := strings.Repeat("é", 80)
	legacy, err := bcrypt.GenerateFromPassword([]byte(pw)[:MaxPasswordBytes], bcrypt.MinCost)
	require.NoError(t, err)

	digest := models.PasswordDigest{Hash: string(legacy)}
	assert.Equal(t, models.SchemeBcryptRune72, ResolveScheme(digest))
	assert.True(t, h.Verify(pw, digest))
	assert.True(t, h.NeedsRehash(digest))
}

func TestNeedsRehash(t *testing.T) {
	h := newTestHasher()
	digest, err := h.Hash("admin123")
	require.NoError(t, err)
	assert.False(t, h.NeedsRehash(digest))

	stronger := NewPasswordHasher(bcrypt.MinCost+1, zerolog.Nop())
	assert.True(t, stronger.NeedsRehash(digest))
}

func TestNewPasswordHasherClampsCost(t *testing.T) {
	h := NewPasswordHasher(99, zerolog.Nop())
	assert.Equal(t, BcryptCost, h.cost)
}

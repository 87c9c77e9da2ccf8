package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/yigit/rollcall/internal/app/models"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the default hashing cost
const BcryptCost = 12

// MaxPasswordBytes is the longest input bcrypt looks at
const MaxPasswordBytes = 72

// PasswordHasher hashes new passwords with bcrypt and verifies stored hashes
// under whichever scheme they were written with.
type PasswordHasher struct {
	cost   int
	logger zerolog.Logger

	dummyOnce sync.Once
	dummyHash []byte
}

// NewPasswordHasher creates a hasher. A cost outside bcrypt's bounds falls back to BcryptCost.
func NewPasswordHasher(cost int, logger zerolog.Logger) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = BcryptCost
	}
	return &PasswordHasher{cost: cost, logger: logger}
}

// TruncatePassword returns the UTF-8 bytes of password cut at MaxPasswordBytes.
// The cut is on the byte boundary, so a multi-byte character may be split.
// Hash and Verify both go through here, which keeps them in agreement.
func TruncatePassword(password string) []byte {
	b := []byte(password)
	if len(b) > MaxPasswordBytes {
		b = b[:MaxPasswordBytes]
	}
	return b
}

// Hash produces a salted digest under the current scheme.
// Two calls with the same password yield different digests.
func (h *PasswordHasher) Hash(password string) (models.PasswordDigest, error) {
	hashed, err := bcrypt.GenerateFromPassword(TruncatePassword(password), h.cost)
	if err != nil {
		return models.PasswordDigest{}, fmt.Errorf("failed to hash password: %w", err)
	}
	return models.PasswordDigest{Scheme: models.SchemeBcrypt, Hash: string(hashed)}, nil
}

// Verify checks password against digest. It never panics or returns an error:
// malformed or unknown digests simply do not match.
func (h *PasswordHasher) Verify(password string, digest models.PasswordDigest) bool {
	scheme := ResolveScheme(digest)
	switch scheme {
	case models.SchemeBcrypt:
		return h.compareBcrypt(digest.Hash, TruncatePassword(password))
	case models.SchemeBcryptRune72:
		return h.compareBcrypt(digest.Hash, truncateRunes(password))
	case models.SchemeSHA256:
		return compareSHA256(digest.Hash, password)
	default:
		h.logger.Debug().Str("scheme", string(digest.Scheme)).Msg("Unknown password scheme")
		return false
	}
}

// NeedsRehash reports whether digest should be replaced by a fresh Hash after a
// successful verification.
func (h *PasswordHasher) NeedsRehash(digest models.PasswordDigest) bool {
	if ResolveScheme(digest) != models.SchemeBcrypt {
		return true
	}
	cost, err := bcrypt.Cost([]byte(digest.Hash))
	if err != nil {
		return true
	}
	return cost < h.cost
}

// DummyVerify burns the same CPU time as a real bcrypt comparison. Callers use it
// when there is no stored hash so timing does not reveal that fact.
func (h *PasswordHasher) DummyVerify(password string) {
	h.dummyOnce.Do(func() {
		token, err := GenerateOpaqueToken(16)
		if err != nil {
			token = "rollcall-dummy-password"
		}
		h.dummyHash, _ = bcrypt.GenerateFromPassword([]byte(token), h.cost)
	})
	_ = bcrypt.CompareHashAndPassword(h.dummyHash, TruncatePassword(password))
}

func (h *PasswordHasher) compareBcrypt(hash string, password []byte) bool {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), password); err != nil {
		if err != bcrypt.ErrMismatchedHashAndPassword {
			h.logger.Debug().Err(err).Msg("Stored bcrypt hash could not be parsed")
		}
		return false
	}
	return true
}

// ResolveScheme returns the scheme of digest. Rows written before the scheme
// column existed carry an empty tag and are classified by the shape of the hash.
func ResolveScheme(digest models.PasswordDigest) models.PasswordScheme {
	if digest.Scheme != "" {
		return digest.Scheme
	}
	switch {
	case strings.HasPrefix(digest.Hash, "$2a$"), strings.HasPrefix(digest.Hash, "$2b$"), strings.HasPrefix(digest.Hash, "$2y$"):
		return models.SchemeBcryptRune72
	case len(digest.Hash) == sha256.Size*2 && isHex(digest.Hash):
		return models.SchemeSHA256
	default:
		return ""
	}
}

// truncateRunes reproduces the legacy rule: keep the first 72 characters when the
// encoded password exceeds 72 bytes, then let bcrypt see at most 72 bytes of that.
func truncateRunes(password string) []byte {
	if len(password) > MaxPasswordBytes && utf8.RuneCountInString(password) > MaxPasswordBytes {
		runes := []rune(password)
		password = string(runes[:MaxPasswordBytes])
	}
	return TruncatePassword(password)
}

func compareSHA256(stored, password string) bool {
	want, err := hex.DecodeString(strings.ToLower(stored))
	if err != nil || len(want) != sha256.Size {
		return false
	}
	got := sha256.Sum256([]byte(password))
	return subtle.ConstantTimeCompare(want, got[:]) == 1
}

func isHex(s string) bool {
	_, err := hex.DecodeString(s)
	return err == nil
}

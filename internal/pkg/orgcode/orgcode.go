// Package orgcode builds organization codes of the form PREFIX-NAME-SUFFIX,
// e.g. SCH-STMARY-AB12CD for "St. Mary's School".
package orgcode

import (
	"crypto/rand"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/gosimple/slug"
	"github.com/yigit/rollcall/internal/app/models"
)

const (
	PrefixSchool  = "SCH"
	PrefixCollege = "CLG"

	// NameLength is the maximum length of the name fragment
	NameLength = 6
	// SuffixLength is the length of the random suffix
	SuffixLength = 6
	// FallbackName is used when the institution name has no usable letters
	FallbackName = "ORG"

	separator      = "-"
	suffixAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Pattern matches every code Generate can produce
var Pattern = regexp.MustCompile(`^(SCH|CLG)-[A-Z]{1,6}-[A-Z0-9]{6}$`)

var stopWords = map[string]struct{}{
	"the": {},
	"of":  {},
	"and": {},
	"a":   {},
	"an":  {},
}

var nonLetters = regexp.MustCompile(`[^a-z]`)

// Generator creates organization codes. Random defaults to crypto/rand.
type Generator struct {
	Random io.Reader
}

// NewGenerator returns a generator backed by crypto/rand
func NewGenerator() *Generator {
	return &Generator{Random: rand.Reader}
}

// Generate returns a fresh code for the institution. Each call draws a new suffix.
func (g *Generator) Generate(name string, institutionType models.InstitutionType) (string, error) {
	suffix, err := g.suffix()
	if err != nil {
		return "", err
	}
	return strings.Join([]string{Prefix(institutionType), ShortName(name), suffix}, separator), nil
}

// Prefix maps an institution type to its code prefix
func Prefix(institutionType models.InstitutionType) string {
	if institutionType == models.InstitutionSchool {
		return PrefixSchool
	}
	return PrefixCollege
}

// ShortName derives the name fragment. Each whitespace separated word is
// transliterated and stripped to letters before filler words are dropped, so
// "A.B.C." stays one word. The rest is upper-cased and cut to NameLength.
func ShortName(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		word = nonLetters.ReplaceAllString(slug.Make(word), "")
		if word == "" {
			continue
		}
		if _, skip := stopWords[word]; skip {
			continue
		}
		b.WriteString(word)
		if b.Len() >= NameLength {
			break
		}
	}

	short := strings.ToUpper(b.String())
	if len(short) > NameLength {
		short = short[:NameLength]
	}
	if short == "" {
		return FallbackName
	}
	return short
}

func (g *Generator) suffix() (string, error) {
	random := g.Random
	if random == nil {
		random = rand.Reader
	}

	// Rejection sampling keeps the distribution uniform over the alphabet.
	limit := byte(256 - 256%len(suffixAlphabet))
	out := make([]byte, 0, SuffixLength)
	buf := make([]byte, SuffixLength*2)
	for len(out) < SuffixLength {
		if _, err := io.ReadFull(random, buf); err != nil {
			return "", fmt.Errorf("failed to read random suffix: %w", err)
		}
		for _, c := range buf {
			if c >= limit {
				continue
			}
			out = append(out, suffixAlphabet[int(c)%len(suffixAlphabet)])
			if len(out) == SuffixLength {
				break
			}
		}
	}
	return string(out), nil
}

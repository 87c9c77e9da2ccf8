package orgcode

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/rollcall/internal/app/models"
)

func TestShortName(t *testing.T) {
	cases := map[string]string{
		"St. Mary's School":       "STMARY",
		"MIT Engineering College": "MITENG",
		"The College of Arts":     "COLLEG",
		"A B C":                   "BC",
		"École Polytechnique":     "ECOLEP",
		"123 !!!":                 FallbackName,
		"":                        FallbackName,
		"Oak":                     "OAK",
		"A.B.C. College":          "ABCCOL",
		"U.S. Naval Academy":      "USNAVA",
		"Arts & Crafts School":    "ARTSCR",
		"Mary's-Hill":             "MARYSH",
	}
	for name, want := range cases {
		assert.Equal(t, want, ShortName(name), name)
	}
}

func TestGenerateFormat(t *testing.T) {
	g := NewGenerator()

	code, err := g.Generate("St. Mary's School", models.InstitutionSchool)
	require.NoError(t, err)
	assert.Regexp(t, Pattern, code)
	assert.Contains(t, code, "SCH-STMARY-")

	code, err = g.Generate("MIT Engineering College", models.InstitutionCollege)
	require.NoError(t, err)
	assert.Regexp(t, Pattern, code)
	assert.Contains(t, code, "CLG-MITENG-")
}

func TestGenerateDrawsFreshSuffix(t *testing.T) {
	g := NewGenerator()
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		code, err := g.Generate("Oak", models.InstitutionSchool)
		require.NoError(t, err)
		seen[code] = struct{}{}
	}
	assert.Greater(t, len(seen), 190)
}

func TestGenerateDeterministicWithFixedRandom(t *testing.T) {
	g := &Generator{Random: bytes.NewReader(bytes.Repeat([]byte{0, 1, 2, 35, 36, 255}, 4))}
	code, err := g.Generate("Oak", models.InstitutionCollege)
	require.NoError(t, err)
	// 255 is rejected; 36 wraps to 'A'.
	assert.Equal(t, "CLG-OAK-ABC9AA", code)
}

func TestGenerateRandomExhausted(t *testing.T) {
	g := &Generator{Random: bytes.NewReader([]byte{1, 2})}
	_, err := g.Generate("Oak", models.InstitutionSchool)
	assert.Error(t, err)
}

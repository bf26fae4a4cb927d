package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomCode(t *testing.T) {
	for _, n := range []int{6, 8} {
		code := RandomCode(n)
		require.Len(t, code, n)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, r), "unexpected rune %q", r)
		}
	}
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "AB12CD", NormalizeCode("  ab12cd "))
}

func TestNormalizeBool(t *testing.T) {
	assert.True(t, NormalizeBool("TRUE"))
	assert.True(t, NormalizeBool(" có "))
	assert.False(t, NormalizeBool(""))
	assert.False(t, NormalizeBool("không"))
}

func TestValidHMAC(t *testing.T) {
	sig := HMACSHA256Hex("secret", "export:U1")
	assert.True(t, ValidHMAC("secret", "export:U1", sig))
	assert.False(t, ValidHMAC("secret", "export:U2", sig))
	assert.False(t, ValidHMAC("other", "export:U1", sig))
}

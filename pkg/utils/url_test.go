package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashKey(t *testing.T) {
	a := HashKey("2023UIT3001")
	assert.Len(t, a, 64)
	assert.Equal(t, a, HashKey("2023UIT3001"))
	assert.NotEqual(t, a, HashKey("2023UIT3002"))
	assert.NotContains(t, a, "2023")
	// Part boundaries matter.
	assert.NotEqual(t, HashKey("ab", "c"), HashKey("a", "bc"))
}

func TestTermKey(t *testing.T) {
	assert.NotEqual(t, TermKey("r1", 0, 1), TermKey("r1", 1, 0))
	assert.Equal(t, TermKey("r1", 2, 3), HashKey("r1", "2", "3"))
}

func TestToAbsoluteURL(t *testing.T) {
	got, err := ToAbsoluteURL("https://www.imsnsit.org/imsnsit/", "images/captcha/c_1.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://www.imsnsit.org/imsnsit/images/captcha/c_1.jpg", got)

	got, err = ToAbsoluteURL("https://www.imsnsit.org/imsnsit/", "https://cdn.example.org/c.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.org/c.jpg", got)
}

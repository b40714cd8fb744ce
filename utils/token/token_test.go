package token_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faithinsite/core/utils/token"
)

func TestNewVerificationToken(t *testing.T) {
	tok, err := token.NewVerificationToken()
	require.NoError(t, err)
	assert.NotEmpty(t, tok)

	for _, r := range tok {
		isDigit := r >= '0' && r <= '9'
		isLower := r >= 'a' && r <= 'z'
		isUpper := r >= 'A' && r <= 'Z'
		assert.True(t, isDigit || isLower || isUpper, "unexpected rune %q", r)
	}

	other, err := token.NewVerificationToken()
	require.NoError(t, err)
	assert.NotEqual(t, tok, other)
}

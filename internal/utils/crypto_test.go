// internal/utils/crypto_test.go
package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTPCode(t *testing.T) {
	code, err := GenerateOTPCode()
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), code)
}

func TestGenerateCartIDFormat(t *testing.T) {
	cartID, err := GenerateCartID()
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^CART-\d{17}$`), cartID)
}

func TestGenerateRandomDigitsLength(t *testing.T) {
	digits, err := GenerateRandomDigits(10)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{10}$`), digits)
}

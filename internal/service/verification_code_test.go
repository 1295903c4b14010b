package service

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVerificationCodeRange(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 500; i++ {
		code, err := generateVerificationCode()
		require.NoError(t, err)
		require.Regexp(t, `^\d{6}$`, code)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, codeMin)
		assert.LessOrEqual(t, n, codeMax)
		seen[code] = struct{}{}
	}
	assert.Greater(t, len(seen), 400, "codes should not repeat often")
}

func TestCodesMatch(t *testing.T) {
	assert.True(t, codesMatch("123456", "123456"))
	assert.False(t, codesMatch("123456", "123457"))
	assert.False(t, codesMatch("12345", "123456"))
	assert.False(t, codesMatch("", "123456"))
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	mode, err := ParseMode(" Remove ")
	require.NoError(t, err)
	assert.Equal(t, ModeRemove, mode)

	mode, err = ParseMode("merge")
	require.NoError(t, err)
	assert.Equal(t, ModeMerge, mode)

	_, err = ParseMode("split")
	require.ErrorIs(t, err, ErrInvalidMode)
}

func TestIsSupportedLanguage(t *testing.T) {
	assert.True(t, IsSupportedLanguage("English"))
	assert.False(t, IsSupportedLanguage("english"))
	assert.False(t, IsSupportedLanguage("Klingon"))
}

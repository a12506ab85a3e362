package utils_test

import (
	"testing"

	"emcon-server/internal/utils"

	"github.com/stretchr/testify/require"
)

func TestGenerateSecureToken(t *testing.T) {
	a, err := utils.GenerateSecureToken()
	require.NoError(t, err)
	b, err := utils.GenerateSecureToken()
	require.NoError(t, err)

	require.Len(t, a, 64)
	require.NotEqual(t, a, b)
}

func TestHashToken_DeterministicAndOneWay(t *testing.T) {
	token := "0123456789abcdef"
	h1 := utils.HashToken(token)
	h2 := utils.HashToken(token)

	require.Equal(t, h1, h2)
	require.Len(t, h1, 64)
	require.NotEqual(t, token, h1)
	require.NotEqual(t, h1, utils.HashToken("0123456789abcdee"))
}

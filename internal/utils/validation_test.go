package utils_test

import (
	"testing"

	"emcon-server/internal/utils"

	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	require.NoError(t, utils.ValidatePassword("Sup3rSecret"))
	require.NoError(t, utils.ValidatePassword("Another1Good"))

	require.Error(t, utils.ValidatePassword("short1A"))
	require.Error(t, utils.ValidatePassword("alllowercase1"))
	require.Error(t, utils.ValidatePassword("ALLUPPERCASE1"))
	require.Error(t, utils.ValidatePassword("NoDigitsHere"))
	require.Error(t, utils.ValidatePassword(""))
}

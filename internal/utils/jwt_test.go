package utils_test

import (
	"testing"

	"emcon-server/internal/config"
	"emcon-server/internal/models"
	"emcon-server/internal/utils"

	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:                 "access-secret",
		JWTRefreshSecret:          "refresh-secret",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 168,
	}
}

func TestGenerateAndValidateTokens(t *testing.T) {
	cfg := testConfig()
	user := &models.User{Role: models.RoleUser}
	user.ID = "user-123"

	access, refresh, err := utils.GenerateTokens(user, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	require.NotEqual(t, access, refresh)

	claims, err := utils.ValidateToken(access, cfg.JWTSecret)
	require.NoError(t, err)
	require.Equal(t, "user-123", claims.UserID)
	require.Equal(t, models.RoleUser, claims.Role)

	refreshClaims, err := utils.ValidateToken(refresh, cfg.JWTRefreshSecret)
	require.NoError(t, err)
	require.Equal(t, "user-123", refreshClaims.UserID)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	cfg := testConfig()
	user := &models.User{Role: models.RoleAdmin}
	user.ID = "admin-1"

	access, _, err := utils.GenerateTokens(user, cfg)
	require.NoError(t, err)

	_, err = utils.ValidateToken(access, "some-other-secret")
	require.Error(t, err)

	// Access tokens must not validate against the refresh secret.
	_, err = utils.ValidateToken(access, cfg.JWTRefreshSecret)
	require.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := utils.ValidateToken("not.a.token", "access-secret")
	require.Error(t, err)
}

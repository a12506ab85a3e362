package models_test

import (
	"testing"

	"emcon-server/internal/models"

	"github.com/stretchr/testify/require"
)

func TestSetPassword_StoresHashNotPlaintext(t *testing.T) {
	u := &models.User{}
	require.NoError(t, u.SetPassword("Sup3rSecret"))
	require.NotEmpty(t, u.Password)
	require.NotEqual(t, "Sup3rSecret", u.Password)
}

func TestCheckPassword(t *testing.T) {
	u := &models.User{}
	require.NoError(t, u.SetPassword("Sup3rSecret"))
	require.True(t, u.CheckPassword("Sup3rSecret"))
	require.False(t, u.CheckPassword("wrong"))
	require.False(t, u.CheckPassword(""))
}

func TestSanitize_OmitsSensitiveFields(t *testing.T) {
	u := &models.User{
		Email:                 "donor@example.com",
		FirstName:             "Ada",
		LastName:              "Okafor",
		Role:                  models.RoleUser,
		BloodType:             "O-",
		VerificationTokenHash: "deadbeef",
		ResetTokenHash:        "cafebabe",
	}
	require.NoError(t, u.SetPassword("Sup3rSecret"))

	s := u.Sanitize()
	require.Equal(t, "donor@example.com", s.Email)
	require.Equal(t, "Ada", s.FirstName)
	require.Equal(t, models.RoleUser, s.Role)
	require.Equal(t, "O-", s.BloodType)
	// The sanitized struct has no password or token fields at all; make sure
	// the visible fields carry nothing sensitive.
	require.NotContains(t, []string{s.Email, s.FirstName, s.LastName}, u.Password)
}

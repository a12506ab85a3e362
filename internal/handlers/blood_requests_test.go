package handlers_test

import (
	"strings"
	"testing"

	"emcon-server/internal/handlers"
	"emcon-server/internal/models"

	"github.com/stretchr/testify/require"
)

func TestNewRequestID_Format(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := handlers.NewRequestID()
		require.True(t, strings.HasPrefix(id, "BR-"))
		require.Len(t, id, 11)
		require.Equal(t, strings.ToUpper(id), id)
		require.False(t, seen[id], "request ids must not repeat")
		seen[id] = true
	}
}

func TestCanPostForHospital(t *testing.T) {
	profile := &models.HospitalAdminProfile{
		HospitalID:        "hospital-a",
		CanManageRequests: true,
	}

	// Hospital admins may only post for the hospital they manage.
	require.NoError(t, handlers.CanPostForHospital(models.RoleHospitalAdmin, profile, "hospital-a"))
	require.Error(t, handlers.CanPostForHospital(models.RoleHospitalAdmin, profile, "hospital-b"))

	// The manage-requests permission gates posting too.
	readOnly := &models.HospitalAdminProfile{HospitalID: "hospital-a"}
	require.Error(t, handlers.CanPostForHospital(models.RoleHospitalAdmin, readOnly, "hospital-a"))

	// No profile, no posting.
	require.Error(t, handlers.CanPostForHospital(models.RoleHospitalAdmin, nil, "hospital-a"))

	// Plain admins are unrestricted.
	require.NoError(t, handlers.CanPostForHospital(models.RoleAdmin, nil, "hospital-b"))
}

func TestGroupRequestsByBloodType(t *testing.T) {
	requests := []models.BloodRequest{
		{BloodType: "O+", Accepted: false},
		{BloodType: "O+", Accepted: true},
		{BloodType: "O+", Accepted: false},
		{BloodType: "AB-", Accepted: true},
	}

	summary := handlers.GroupRequestsByBloodType(requests)
	require.Len(t, summary, 2)

	// Output follows blood group order, AB- before O+.
	require.Equal(t, "AB-", summary[0].BloodType)
	require.Equal(t, 1, summary[0].Total)
	require.Equal(t, 1, summary[0].Accepted)
	require.Equal(t, 0, summary[0].Pending)

	require.Equal(t, "O+", summary[1].BloodType)
	require.Equal(t, 3, summary[1].Total)
	require.Equal(t, 1, summary[1].Accepted)
	require.Equal(t, 2, summary[1].Pending)
}

func TestGroupRequestsByBloodType_Empty(t *testing.T) {
	require.Empty(t, handlers.GroupRequestsByBloodType(nil))
}

func TestIsValidBloodType(t *testing.T) {
	for _, bt := range models.ValidBloodTypes {
		require.True(t, models.IsValidBloodType(bt))
	}
	require.False(t, models.IsValidBloodType("C+"))
	require.False(t, models.IsValidBloodType("o+"))
	require.False(t, models.IsValidBloodType(""))
}

func TestIsValidUrgency(t *testing.T) {
	require.True(t, models.IsValidUrgency(models.UrgencyNormal))
	require.True(t, models.IsValidUrgency(models.UrgencyUrgent))
	require.True(t, models.IsValidUrgency(models.UrgencyCritical))
	require.False(t, models.IsValidUrgency("ASAP"))
}

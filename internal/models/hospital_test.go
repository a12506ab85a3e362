package models_test

import (
	"testing"

	"emcon-server/internal/models"

	"github.com/stretchr/testify/require"
)

func TestImagingList(t *testing.T) {
	h := &models.Hospital{MedicalImaging: "CT, MRI , X-Ray,,"}
	require.Equal(t, []string{"CT", "MRI", "X-Ray"}, h.ImagingList())

	empty := &models.Hospital{}
	require.Empty(t, empty.ImagingList())
}

func TestServiceList(t *testing.T) {
	h := &models.Hospital{Services: "Cardiology,Oncology"}
	require.Equal(t, []string{"Cardiology", "Oncology"}, h.ServiceList())
}

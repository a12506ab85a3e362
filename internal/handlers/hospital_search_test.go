package handlers_test

import (
	"net/url"
	"testing"

	"emcon-server/internal/handlers"
	"emcon-server/internal/models"

	"github.com/stretchr/testify/require"
)

func TestParseHospitalFilter_AllCriteria(t *testing.T) {
	values := url.Values{}
	values.Set("icu", "10")
	values.Set("ventilators", "4")
	values.Set("bloodBank", "true")
	values.Set("imaging", "CT Scan, MRI")
	values.Set("latitude", "40.71")
	values.Set("longitude", "-74.00")
	values.Set("radius", "15")
	values.Set("name", "General")
	values.Set("city", "Newark")
	values.Set("services", "Cardiology")
	values.Set("minRating", "3.5")

	f, err := handlers.ParseHospitalFilter(values)
	require.NoError(t, err)
	require.NotNil(t, f.MinICUBeds)
	require.Equal(t, 10, *f.MinICUBeds)
	require.NotNil(t, f.MinVentilators)
	require.Equal(t, 4, *f.MinVentilators)
	require.NotNil(t, f.BloodBank)
	require.True(t, *f.BloodBank)
	require.Equal(t, []string{"CT Scan", "MRI"}, f.Imaging)
	require.NotNil(t, f.Geo)
	require.Equal(t, 15.0, f.Geo.RadiusKm)
	require.Equal(t, "General", f.Name)
	require.Equal(t, "Newark", f.City)
	require.Equal(t, []string{"Cardiology"}, f.Services)
	require.NotNil(t, f.MinRating)
	require.Equal(t, 3.5, *f.MinRating)
}

func TestParseHospitalFilter_EmptyMeansUnconstrained(t *testing.T) {
	f, err := handlers.ParseHospitalFilter(url.Values{})
	require.NoError(t, err)
	require.Nil(t, f.MinICUBeds)
	require.Nil(t, f.MinVentilators)
	require.Nil(t, f.BloodBank)
	require.Nil(t, f.Geo)
	require.Nil(t, f.MinRating)
	require.Empty(t, f.Imaging)
	require.Empty(t, f.Services)
}

func TestParseHospitalFilter_RejectsMalformedInput(t *testing.T) {
	cases := map[string]url.Values{
		"non-numeric icu":       {"icu": {"many"}},
		"negative icu":          {"icu": {"-1"}},
		"bad bloodBank":         {"bloodBank": {"yes please"}},
		"rating out of range":   {"minRating": {"7"}},
		"latitude out of range": {"latitude": {"120"}, "longitude": {"0"}},
		"latitude without lon":  {"latitude": {"40"}},
		"radius without point":  {"radius": {"10"}},
		"zero radius":           {"latitude": {"40"}, "longitude": {"0"}, "radius": {"0"}},
	}
	for name, values := range cases {
		_, err := handlers.ParseHospitalFilter(values)
		require.Error(t, err, name)
	}
}

func TestParseHospitalFilter_DefaultRadius(t *testing.T) {
	values := url.Values{"latitude": {"40"}, "longitude": {"-74"}}
	f, err := handlers.ParseHospitalFilter(values)
	require.NoError(t, err)
	require.NotNil(t, f.Geo)
	require.Equal(t, 25.0, f.Geo.RadiusKm)
}

func TestNormalizeModality(t *testing.T) {
	require.Equal(t, "ctscan", handlers.NormalizeModality("CT Scan"))
	require.Equal(t, "ctscan", handlers.NormalizeModality("ct-scan"))
	require.Equal(t, "ctscan", handlers.NormalizeModality("CT_SCAN"))
	require.Equal(t, "xray", handlers.NormalizeModality("X-Ray"))
}

func TestContainsAllModalities(t *testing.T) {
	available := []string{"CT", "MRI", "X-Ray"}

	// Set containment, not any-match.
	require.True(t, handlers.ContainsAllModalities(available, []string{"CT Scan", "MRI"}))
	require.True(t, handlers.ContainsAllModalities(available, []string{"xray"}))
	require.False(t, handlers.ContainsAllModalities(available, []string{"MRI", "Ultrasound"}))
	require.True(t, handlers.ContainsAllModalities(available, nil))
	require.False(t, handlers.ContainsAllModalities(nil, []string{"MRI"}))
}

func TestHaversineKm(t *testing.T) {
	// New York -> Los Angeles is roughly 3936 km.
	d := handlers.HaversineKm(40.7128, -74.0060, 34.0522, -118.2437)
	require.InDelta(t, 3936, d, 50)

	// Zero distance for identical points.
	require.InDelta(t, 0, handlers.HaversineKm(51.5, -0.12, 51.5, -0.12), 0.001)
}

func TestSortSearchResults_ByRatingThenName(t *testing.T) {
	results := []handlers.HospitalSearchResult{
		{Hospital: models.Hospital{Name: "Beta", Ratings: 4.0}},
		{Hospital: models.Hospital{Name: "Alpha", Ratings: 4.0}},
		{Hospital: models.Hospital{Name: "Gamma", Ratings: 4.5}},
	}
	handlers.SortSearchResults(results, false)
	require.Equal(t, "Gamma", results[0].Name)
	require.Equal(t, "Alpha", results[1].Name)
	require.Equal(t, "Beta", results[2].Name)
}

func TestSortSearchResults_ByProximity(t *testing.T) {
	near, far := 1.2, 8.4
	results := []handlers.HospitalSearchResult{
		{Hospital: models.Hospital{Name: "Far", Ratings: 5}, DistanceKm: &far},
		{Hospital: models.Hospital{Name: "Near", Ratings: 1}, DistanceKm: &near},
	}
	handlers.SortSearchResults(results, true)
	require.Equal(t, "Near", results[0].Name)
	require.Equal(t, "Far", results[1].Name)
}

package handlers

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"emcon-server/internal/cache"
	"emcon-server/internal/models"
	"emcon-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SearchHandler serves hospital discovery queries.
type SearchHandler struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(db *gorm.DB, redisClient *redis.Client) *SearchHandler {
	return &SearchHandler{DB: db, Redis: redisClient}
}

// GeoFilter constrains results to a radius around a point.
type GeoFilter struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
}

// HospitalFilter is the typed form of the search query string. Nil pointer
// fields mean "no constraint". Malformed input is rejected at parse time
// rather than silently dropped.
type HospitalFilter struct {
	MinICUBeds     *int
	MinVentilators *int
	BloodBank      *bool
	Imaging        []string
	Geo            *GeoFilter
	Name           string
	City           string
	Services       []string
	MinRating      *float64
}

const defaultRadiusKm = 25.0

// ParseHospitalFilter builds a HospitalFilter from the query string.
func ParseHospitalFilter(values url.Values) (*HospitalFilter, error) {
	f := &HospitalFilter{
		Name: strings.TrimSpace(values.Get("name")),
		City: strings.TrimSpace(values.Get("city")),
	}

	if raw := values.Get("icu"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid icu parameter: %q", raw)
		}
		f.MinICUBeds = &n
	}
	if raw := values.Get("ventilators"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid ventilators parameter: %q", raw)
		}
		f.MinVentilators = &n
	}
	if raw := values.Get("bloodBank"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid bloodBank parameter: %q", raw)
		}
		f.BloodBank = &b
	}
	if raw := values.Get("imaging"); raw != "" {
		f.Imaging = tokenizeList(raw)
	}
	if raw := values.Get("services"); raw != "" {
		f.Services = tokenizeList(raw)
	}
	if raw := values.Get("minRating"); raw != "" {
		r, err := strconv.ParseFloat(raw, 64)
		if err != nil || r < 0 || r > 5 {
			return nil, fmt.Errorf("invalid minRating parameter: %q", raw)
		}
		f.MinRating = &r
	}

	latRaw, lonRaw := values.Get("latitude"), values.Get("longitude")
	if latRaw != "" || lonRaw != "" {
		if latRaw == "" || lonRaw == "" {
			return nil, fmt.Errorf("latitude and longitude must be supplied together")
		}
		lat, err := strconv.ParseFloat(latRaw, 64)
		if err != nil || lat < -90 || lat > 90 {
			return nil, fmt.Errorf("invalid latitude parameter: %q", latRaw)
		}
		lon, err := strconv.ParseFloat(lonRaw, 64)
		if err != nil || lon < -180 || lon > 180 {
			return nil, fmt.Errorf("invalid longitude parameter: %q", lonRaw)
		}
		radius := defaultRadiusKm
		if rRaw := values.Get("radius"); rRaw != "" {
			radius, err = strconv.ParseFloat(rRaw, 64)
			if err != nil || radius <= 0 {
				return nil, fmt.Errorf("invalid radius parameter: %q", rRaw)
			}
		}
		f.Geo = &GeoFilter{Latitude: lat, Longitude: lon, RadiusKm: radius}
	} else if values.Get("radius") != "" {
		return nil, fmt.Errorf("radius requires latitude and longitude")
	}

	return f, nil
}

func tokenizeList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// NormalizeModality lower-cases a modality name and strips separator
// characters so "CT Scan", "ct-scan" and "CT_SCAN" compare equal.
func NormalizeModality(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch r {
		case ' ', '-', '_', '.', '/':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// modalityMatches tolerates naming variance such as "CT" vs "CT Scan": after
// normalization one name must contain the other.
func modalityMatches(stored, wanted string) bool {
	if stored == "" || wanted == "" {
		return false
	}
	return strings.Contains(stored, wanted) || strings.Contains(wanted, stored)
}

// ContainsAllModalities reports whether every requested modality is present
// in the hospital's imaging set (set containment, not any-match).
func ContainsAllModalities(available, requested []string) bool {
	for _, want := range requested {
		w := NormalizeModality(want)
		found := false
		for _, have := range available {
			if modalityMatches(NormalizeModality(have), w) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// HaversineKm returns the great-circle distance between two points in km.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371.0
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// HospitalSearchResult is a hospital augmented with its live review count
// and, for geo queries, the distance from the search point.
type HospitalSearchResult struct {
	models.Hospital
	LiveReviewCount int      `json:"liveReviewCount"`
	DistanceKm      *float64 `json:"distanceKm,omitempty"`
}

// Search handles GET /hospitals/search. All supplied criteria must hold
// simultaneously. Results sort by proximity when a point is given, otherwise
// by rating descending then name ascending.
func (h *SearchHandler) Search(c *gin.Context) {
	filter, err := ParseHospitalFilter(c.Request.URL.Query())
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	query := h.DB.Model(&models.Hospital{})
	if filter.MinICUBeds != nil {
		query = query.Where("icu_beds >= ?", *filter.MinICUBeds)
	}
	if filter.MinVentilators != nil {
		query = query.Where("ventilators >= ?", *filter.MinVentilators)
	}
	if filter.BloodBank != nil {
		query = query.Where("has_blood_bank = ?", *filter.BloodBank)
	}
	if filter.Name != "" {
		query = query.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.City != "" {
		query = query.Where("city LIKE ? OR address LIKE ?", "%"+filter.City+"%", "%"+filter.City+"%")
	}
	if filter.MinRating != nil {
		query = query.Where("ratings >= ?", *filter.MinRating)
	}

	var hospitals []models.Hospital
	if err := query.Find(&hospitals).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch hospitals: "+err.Error())
		return
	}

	counts, err := h.reviewCounts(c)
	if err != nil {
		utils.InternalServerError(c, "Failed to aggregate review counts: "+err.Error())
		return
	}

	results := make([]HospitalSearchResult, 0, len(hospitals))
	for _, hospital := range hospitals {
		if len(filter.Imaging) > 0 && !ContainsAllModalities(hospital.ImagingList(), filter.Imaging) {
			continue
		}
		if len(filter.Services) > 0 && !ContainsAllModalities(hospital.ServiceList(), filter.Services) {
			continue
		}
		result := HospitalSearchResult{
			Hospital:        hospital,
			LiveReviewCount: counts[hospital.ID],
		}
		if filter.Geo != nil {
			d := HaversineKm(filter.Geo.Latitude, filter.Geo.Longitude, hospital.Latitude, hospital.Longitude)
			if d > filter.Geo.RadiusKm {
				continue
			}
			result.DistanceKm = &d
		}
		results = append(results, result)
	}

	SortSearchResults(results, filter.Geo != nil)

	utils.Success(c, "Hospitals fetched successfully", results)
}

// SortSearchResults orders results by proximity for geo queries, otherwise by
// rating descending with name ascending as the tie-breaker.
func SortSearchResults(results []HospitalSearchResult, byProximity bool) {
	sort.SliceStable(results, func(i, j int) bool {
		if byProximity && results[i].DistanceKm != nil && results[j].DistanceKm != nil {
			return *results[i].DistanceKm < *results[j].DistanceKm
		}
		if results[i].Ratings != results[j].Ratings {
			return results[i].Ratings > results[j].Ratings
		}
		return results[i].Name < results[j].Name
	})
}

// reviewCounts aggregates review counts per hospital, going through the
// short-lived redis cache when available.
func (h *SearchHandler) reviewCounts(c *gin.Context) (map[string]int, error) {
	ctx := c.Request.Context()
	if h.Redis != nil {
		cached, err := cache.GetCachedReviewCounts(ctx, h.Redis)
		if err != nil {
			logrus.WithError(err).Warn("Review count cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	type countRow struct {
		HospitalID string
		Count      int
	}
	var rows []countRow
	err := h.DB.Model(&models.Review{}).
		Select("hospital_id, COUNT(*) as count").
		Group("hospital_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.HospitalID] = row.Count
	}

	if h.Redis != nil && len(counts) > 0 {
		if err := cache.SetCachedReviewCounts(ctx, h.Redis, counts); err != nil {
			logrus.WithError(err).Warn("Review count cache write failed")
		}
	}
	return counts, nil
}

package models

import (
	"strings"
)

// Hospital represents a care facility discoverable through search.
// Imaging, insurance and services are stored comma-joined; list access goes
// through the accessors below so normalization stays in one place.
type Hospital struct {
	BaseModel
	Name           string  `gorm:"size:255;not null;index" json:"name"`
	Address        string  `gorm:"size:255" json:"address"`
	City           string  `gorm:"size:100;index" json:"city"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	ContactPhone   string  `gorm:"size:30" json:"contactPhone"`
	ContactEmail   string  `gorm:"size:255" json:"contactEmail"`
	ICUBeds        int     `gorm:"default:0" json:"icuBeds"`
	Ventilators    int     `gorm:"default:0" json:"ventilators"`
	HasBloodBank   bool    `gorm:"default:false" json:"hasBloodBank"`
	MedicalImaging string  `gorm:"size:500" json:"medicalImaging"`
	ImagingCosts   string  `gorm:"size:500" json:"imagingCosts,omitempty"`
	Insurances     string  `gorm:"size:500" json:"insurances,omitempty"`
	Services       string  `gorm:"size:500" json:"services,omitempty"`
	Ratings        float64 `gorm:"default:0" json:"ratings"`
	ReviewCount    int     `gorm:"default:0" json:"reviewCount"`

	// Relations
	Reviews       []Review       `gorm:"foreignKey:HospitalID" json:"-"`
	BloodRequests []BloodRequest `gorm:"foreignKey:HospitalID" json:"-"`
}

// ImagingList returns the hospital's imaging modalities as a slice.
func (h *Hospital) ImagingList() []string {
	return splitList(h.MedicalImaging)
}

// ServiceList returns the hospital's services as a slice.
func (h *Hospital) ServiceList() []string {
	return splitList(h.Services)
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

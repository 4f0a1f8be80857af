package geo

import (
	"fmt"
	"math"

	"github.com/nairobi-county/county-tickets/internal/domain"
	apperrors "github.com/nairobi-county/county-tickets/pkg/util/errorutil"
)

const (
	earthRadiusKm = 6371.0088

	// DefaultResolutionRadiusKm is the reference maximum distance between a
	// coordinate and the nearest ward center.
	DefaultResolutionRadiusKm = 5.0

	// distanceToleranceKm treats two candidate distances as equal.
	distanceToleranceKm = 1e-9
)

// Resolution is the result of a ward lookup. Resolved is false when no ward
// center lies within the resolution radius; that is not an error.
type Resolution struct {
	Resolved   bool    `json:"resolved"`
	WardCode   string  `json:"ward_code,omitempty"`
	WardName   string  `json:"ward_name,omitempty"`
	SubCounty  string  `json:"sub_county,omitempty"`
	Zone       string  `json:"zone,omitempty"`
	DistanceKm float64 `json:"distance_km"`
}

// Resolver maps coordinates to wards by nearest center.
type Resolver struct {
	index    *WardIndex
	radiusKm float64
}

// NewResolver builds a resolver. A non-positive radius falls back to the default.
func NewResolver(index *WardIndex, radiusKm float64) *Resolver {
	if radiusKm <= 0 {
		radiusKm = DefaultResolutionRadiusKm
	}
	return &Resolver{index: index, radiusKm: radiusKm}
}

// Index returns the ward index backing the resolver.
func (r *Resolver) Index() *WardIndex {
	return r.index
}

// RadiusKm returns the configured resolution radius.
func (r *Resolver) RadiusKm() float64 {
	return r.radiusKm
}

// Resolve returns the nearest ward within the radius. Wards are scanned in code
// order and only a strictly smaller distance replaces the current best, so
// equidistant wards resolve to the lexically first code.
func (r *Resolver) Resolve(lat, lng float64) (Resolution, error) {
	if err := validateCoordinate(lat, lng); err != nil {
		return Resolution{}, apperrors.NewValidationError(err.Error(), map[string]any{"lat": lat, "lng": lng})
	}

	best := -1
	bestDistance := math.Inf(1)
	for i, ward := range r.index.wards {
		d := HaversineKm(lat, lng, ward.Center.Lat, ward.Center.Lng)
		if d < bestDistance-distanceToleranceKm {
			best = i
			bestDistance = d
		}
	}
	if best < 0 || bestDistance > r.radiusKm {
		return Resolution{Resolved: false, DistanceKm: bestDistance}, nil
	}

	ward := r.index.wards[best]
	res := Resolution{
		Resolved:   true,
		WardCode:   ward.Code,
		WardName:   ward.Name,
		SubCounty:  ward.SubCounty,
		DistanceKm: bestDistance,
	}
	// First declared zone; zones carry no coordinates of their own.
	if len(ward.Zones) > 0 {
		res.Zone = ward.Zones[0].Name
	}
	return res, nil
}

// HaversineKm returns the great-circle distance between two points.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func validateCoordinate(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return fmt.Errorf("coordinate must be finite")
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %v out of range", lat)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("longitude %v out of range", lng)
	}
	return nil
}

// ValidCoordinate reports whether c is finite and within geographic range.
func ValidCoordinate(c domain.Coordinate) bool {
	return validateCoordinate(c.Lat, c.Lng) == nil
}

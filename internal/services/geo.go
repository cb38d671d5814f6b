package services

import (
	"math"
	"sort"

	"github.com/tablepick/reco/pkg/models"
)

const earthRadiusKm = 6371

// Haversine returns the great-circle distance in kilometers.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func radians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// GeoScored is a candidate that survived the radius gate.
type GeoScored struct {
	Position   int
	Score      float64
	DistanceKm float64
}

// FilterByRadius applies the hard geo gate to already-ranked candidates.
// Restaurants with missing coordinates are treated as infinitely far away
// and excluded. Survivors are re-sorted ascending by distance; the
// similarity score is carried along untouched but no longer orders the
// list.
func FilterByRadius(candidates []ScoredDocument, restaurants []models.Restaurant, lat, lon, maxKm float64) []GeoScored {
	var kept []GeoScored
	for _, candidate := range candidates {
		if candidate.Position < 0 || candidate.Position >= len(restaurants) {
			continue
		}
		r := &restaurants[candidate.Position]
		if !r.HasCoordinates() {
			continue
		}
		distance := Haversine(lat, lon, *r.Latitude, *r.Longitude)
		if distance > maxKm {
			continue
		}
		kept = append(kept, GeoScored{
			Position:   candidate.Position,
			Score:      candidate.Score,
			DistanceKm: distance,
		})
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].DistanceKm < kept[j].DistanceKm
	})
	return kept
}

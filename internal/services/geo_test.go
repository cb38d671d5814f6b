package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablepick/reco/pkg/models"
)

func TestHaversine(t *testing.T) {
	// Seoul to Busan, roughly 325 km.
	distance := Haversine(37.5665, 126.9780, 35.1796, 129.0756)
	assert.InDelta(t, 325, distance, 5)

	assert.Equal(t, 0.0, Haversine(37.5, 127.0, 37.5, 127.0))
}

func TestFilterByRadius(t *testing.T) {
	restaurants := []models.Restaurant{
		{ID: 0, Latitude: f64(37.500), Longitude: f64(127.000)}, // at origin
		{ID: 1, Latitude: f64(37.510), Longitude: f64(127.010)}, // ~1.4 km
		{ID: 2, Latitude: f64(37.700), Longitude: f64(127.200)}, // ~28 km
		{ID: 3},                                                 // no coordinates
	}
	candidates := []ScoredDocument{
		{Position: 2, Score: 0.9},
		{Position: 1, Score: 0.8},
		{Position: 3, Score: 0.7},
		{Position: 0, Score: 0.6},
	}

	kept := FilterByRadius(candidates, restaurants, 37.500, 127.000, 5.0)
	require.Len(t, kept, 2)

	assert.Equal(t, 0, kept[0].Position, "survivors are re-sorted by distance, not score")
	assert.Equal(t, 1, kept[1].Position)
	assert.Equal(t, 0.6, kept[0].Score, "similarity score carries through untouched")
	assert.Less(t, kept[0].DistanceKm, kept[1].DistanceKm)
}

func TestFilterByRadius_MissingCoordinatesExcluded(t *testing.T) {
	restaurants := []models.Restaurant{{ID: 0}}
	candidates := []ScoredDocument{{Position: 0, Score: 1.0}}

	kept := FilterByRadius(candidates, restaurants, 37.5, 127.0, 1000)
	assert.Empty(t, kept, "a restaurant without coordinates never passes the gate")
}

func TestFilterByRadius_IgnoresOutOfRangePositions(t *testing.T) {
	restaurants := []models.Restaurant{{ID: 0, Latitude: f64(37.5), Longitude: f64(127.0)}}
	candidates := []ScoredDocument{{Position: 5, Score: 1.0}, {Position: 0, Score: 0.5}}

	kept := FilterByRadius(candidates, restaurants, 37.5, 127.0, 5.0)
	require.Len(t, kept, 1)
	assert.Equal(t, 0, kept[0].Position)
}

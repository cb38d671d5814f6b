package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablepick/reco/pkg/models"
)

func recommendedIDs(result []models.RestaurantRecommendation) []int64 {
	ids := make([]int64, len(result))
	for i, row := range result {
		ids[i] = row.RestaurantID
	}
	return ids
}

func TestRestaurantRecommender_RecommendByTags(t *testing.T) {
	recommender := testRecommender(testSnapshot())

	result := recommender.RecommendByTags([]string{"pasta"}, 2)
	require.Len(t, result, 2)
	assert.Equal(t, int64(0), result[0].RestaurantID)
	assert.Equal(t, "Cozy Pasta House", result[0].Name)
	assert.Greater(t, result[0].Score, result[1].Score)
	assert.Nil(t, result[0].DistanceKm, "no geo gate means no distance")

	assert.Nil(t, recommender.RecommendByTags(nil, 5))
	assert.Nil(t, recommender.RecommendByTags([]string{"pasta"}, 0))
}

func TestRestaurantRecommender_RecommendSimilar(t *testing.T) {
	recommender := testRecommender(testSnapshot())

	result := recommender.RecommendSimilar(0, 10)
	require.Len(t, result, 3)
	assert.NotContains(t, recommendedIDs(result), int64(0), "a restaurant is never similar to itself")

	assert.Nil(t, recommender.RecommendSimilar(999, 10), "unknown restaurant yields no results")
}

func TestRestaurantRecommender_RecommendByPreferences_GeoGate(t *testing.T) {
	recommender := testRecommender(testSnapshot())

	location := &models.LocationData{Latitude: 37.500, Longitude: 127.000}
	result := recommender.RecommendByPreferences([]string{"cozy", "pasta"}, location, 10)
	require.Len(t, result, 2, "far and coordinate-less restaurants are gated out")

	assert.Equal(t, []int64{0, 1}, recommendedIDs(result), "survivors order by distance ascending")
	require.NotNil(t, result[0].DistanceKm)
	require.NotNil(t, result[1].DistanceKm)
	assert.Less(t, *result[0].DistanceKm, *result[1].DistanceKm)
}

func TestRestaurantRecommender_RecommendByPreferences_ExplicitRadius(t *testing.T) {
	recommender := testRecommender(testSnapshot())

	location := &models.LocationData{Latitude: 37.500, Longitude: 127.000, MaxDistanceKm: f64(1.0)}
	result := recommender.RecommendByPreferences([]string{"cozy", "pasta"}, location, 10)
	require.Len(t, result, 1)
	assert.Equal(t, int64(0), result[0].RestaurantID)
}

func TestRestaurantRecommender_RecommendByPreferences_NoLocation(t *testing.T) {
	recommender := testRecommender(testSnapshot())

	result := recommender.RecommendByPreferences([]string{"cozy", "pasta"}, nil, 2)
	require.Len(t, result, 2)
	assert.Equal(t, int64(0), result[0].RestaurantID)
}

func TestRestaurantRecommender_RecommendForUser(t *testing.T) {
	recommender := testRecommender(testSnapshot())
	ctx := context.Background()

	result, cacheHit := recommender.RecommendForUser(ctx, 3, 2)
	require.NotEmpty(t, result)
	assert.False(t, cacheHit)
	assert.Equal(t, int64(1), result[0].RestaurantID, "barbecue tags rank the grill first")

	empty, _ := recommender.RecommendForUser(ctx, 4, 2)
	assert.Nil(t, empty, "a user without tags cannot be personalized")

	unknown, _ := recommender.RecommendForUser(ctx, 999, 2)
	assert.Nil(t, unknown)
}

func TestRestaurantRecommender_RecommendForUserAdvanced(t *testing.T) {
	recommender := testRecommender(testSnapshot())

	result, _ := recommender.RecommendForUserAdvanced(context.Background(), 1, 10)
	require.NotEmpty(t, result)
	assert.NotContains(t, recommendedIDs(result), int64(0), "visited restaurants are excluded")
	assert.Equal(t, int64(2), result[0].RestaurantID, "best remaining content match leads")
}

func TestRestaurantRecommender_RecommendCollaborative(t *testing.T) {
	recommender := testRecommender(testSnapshot())

	result, _ := recommender.RecommendCollaborative(context.Background(), 1, 10)
	require.Len(t, result, 2)
	assert.Equal(t, []int64{2, 1}, recommendedIDs(result))
	assert.Equal(t, 1.0, result[0].Score, "score carries the peer visit frequency")
}

func TestRestaurantRecommender_RecommendHybrid(t *testing.T) {
	recommender := testRecommender(testSnapshot())

	result, _ := recommender.RecommendHybrid(context.Background(), 1, 3)
	assert.Equal(t, []int64{2, 1, 3}, recommendedIDs(result),
		"ids in both lists lead in content order, then content-only, then collaborative-only")
}

func TestRestaurantRecommender_RecommendedReviews(t *testing.T) {
	recommender := testRecommender(testSnapshot())

	result := recommender.RecommendedReviews(0, 1, 3)
	require.Len(t, result, 1, "the review without an image is gated out")
	assert.Equal(t, int64(0), result[0].RestaurantID)
	assert.Equal(t, "Cozy Pasta House", result[0].RestaurantName)
	assert.InDelta(t, 1.0, result[0].TagSimilarity, 1e-12)

	assert.Nil(t, recommender.RecommendedReviews(999, 1, 3))
	assert.Nil(t, recommender.RecommendedReviews(0, 1, 0))
}

func TestRestaurantRecommender_Deterministic(t *testing.T) {
	snap := testSnapshot()

	first := testRecommender(snap).RecommendByTags([]string{"cozy"}, 4)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, testRecommender(snap).RecommendByTags([]string{"cozy"}, 4))
	}
}

package services

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tablepick/reco/internal/config"
	"github.com/tablepick/reco/internal/snapshot"
	"github.com/tablepick/reco/pkg/models"
)

func f64(v float64) *float64 { return &v }

func ts(value string) *time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return &t
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func testRecommendationConfig() *config.RecommendationConfig {
	return &config.RecommendationConfig{
		DefaultTopN:          10,
		MaxTopN:              100,
		OversampleFactor:     2,
		SimilarUserCount:     10,
		DefaultMaxDistanceKm: 5.0,
		ReviewMinBodyLen:     50,
		PostMinBodyLen:       30,
		ReviewTopN:           3,
		DefaultPageSize:      2,
		MaxPageSize:          50,
	}
}

// testSnapshot builds a small corpus shared across the engine tests.
//
// Restaurant 0 matches "cozy pasta" strongly, restaurant 2 weakly via its
// "cozy" tag, restaurants 1 and 3 not at all. Restaurant 3 has no
// coordinates so the geo gate always drops it.
func testSnapshot() *snapshot.Snapshot {
	restaurants := []models.Restaurant{
		{
			ID:        0,
			Name:      "Cozy Pasta House",
			Address:   "12 Olive St",
			Category:  "italian",
			Latitude:  f64(37.500),
			Longitude: f64(127.000),
			Menus:     []models.MenuItem{{Name: "truffle pasta"}, {Name: "lasagna"}},
			Reviews: []models.Review{
				{
					Tags:      []string{"cozy", "pasta"},
					Body:      "The truffle pasta was rich and the warm lighting made the whole evening perfect.",
					Images:    []string{"pasta.jpg"},
					CreatedAt: ts("2024-03-01T12:00:00Z"),
				},
				{
					Tags:      []string{"date"},
					Body:      "Generous portions and friendly staff, ideal spot for a relaxed weeknight dinner.",
					CreatedAt: ts("2024-04-01T12:00:00Z"),
				},
			},
		},
		{
			ID:        1,
			Name:      "Seoul Grill",
			Address:   "8 Ember Rd",
			Category:  "barbecue",
			Latitude:  f64(37.510),
			Longitude: f64(127.010),
			Reviews: []models.Review{
				{
					Tags:      []string{"bbq", "meat"},
					Body:      "Charcoal smoke and perfectly marbled cuts, the tabletop grill never disappoints.",
					Images:    []string{"grill.jpg"},
					CreatedAt: ts("2024-02-10T12:00:00Z"),
				},
			},
		},
		{
			ID:        2,
			Name:      "Quiet Corner Cafe",
			Address:   "3 Linden Ave",
			Category:  "cafe",
			Latitude:  f64(37.700),
			Longitude: f64(127.200),
			Reviews: []models.Review{
				{
					Tags:      []string{"cozy", "quiet", "coffee"},
					Body:      "Soft jazz, single origin pour overs, and enough outlets to stay all afternoon.",
					Images:    []string{"cafe.jpg"},
					CreatedAt: ts("2024-01-20T12:00:00Z"),
				},
			},
		},
		{
			ID:       3,
			Name:     "Hidden Bar",
			Address:  "44 Alley Ln",
			Category: "bar",
			Reviews: []models.Review{
				{
					Tags:      []string{"cocktail"},
					Body:      "Inventive seasonal cocktails behind an unmarked door, worth hunting down once.",
					Images:    []string{"bar.jpg"},
					CreatedAt: ts("2024-05-05T12:00:00Z"),
				},
			},
		},
	}

	users := []models.UserProfile{
		{UserID: 1, Tags: []string{"cozy", "pasta"}},
		{UserID: 2, Tags: []string{"cozy", "quiet"}},
		{UserID: 3, Tags: []string{"bbq", "meat"}},
		{UserID: 4},
	}

	visits := []models.Visit{
		{UserID: 1, RestaurantID: 0},
		{UserID: 2, RestaurantID: 0},
		{UserID: 2, RestaurantID: 2},
		{UserID: 3, RestaurantID: 1},
	}

	return snapshot.New(restaurants, users, visits)
}

func testRecommender(snap *snapshot.Snapshot) *RestaurantRecommender {
	logger := testLogger()
	profiles := NewProfileResolver(snap)
	collaborative := NewCollaborativeEngine(snap, logger)
	return NewRestaurantRecommender(snap, profiles, collaborative, testRecommendationConfig(), logger, nil)
}

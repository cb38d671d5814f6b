package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tablepick/reco/internal/config"
	"github.com/tablepick/reco/internal/services"
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

func testConfig() *config.Config {
	return &config.Config{
		Recommendation: config.RecommendationConfig{
			DefaultTopN:          10,
			MaxTopN:              100,
			OversampleFactor:     2,
			SimilarUserCount:     10,
			DefaultMaxDistanceKm: 5.0,
			ReviewMinBodyLen:     50,
			PostMinBodyLen:       30,
			ReviewTopN:           3,
			DefaultPageSize:      6,
			MaxPageSize:          50,
		},
	}
}

// testSnapshot mirrors the engine-level fixtures: restaurant 0 matches
// "cozy pasta" strongly, restaurant 3 has no coordinates.
func testSnapshot() *snapshot.Snapshot {
	restaurants := []models.Restaurant{
		{
			ID:        0,
			Name:      "Cozy Pasta House",
			Address:   "12 Olive St",
			Category:  "italian",
			Latitude:  f64(37.500),
			Longitude: f64(127.000),
			Menus:     []models.MenuItem{{Name: "truffle pasta"}},
			Reviews: []models.Review{
				{
					Tags:      []string{"cozy", "pasta"},
					Body:      "The truffle pasta was rich and the warm lighting made the whole evening perfect.",
					Images:    []string{"pasta.jpg"},
					CreatedAt: ts("2024-03-01T12:00:00Z"),
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
			ID:       2,
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
		{UserID: 2, Tags: []string{"bbq", "meat"}},
	}

	visits := []models.Visit{
		{UserID: 2, RestaurantID: 1},
	}

	return snapshot.New(restaurants, users, visits)
}

// newTestRouter wires the handlers on the production routes, minus the
// middleware chain so tests exercise the handlers themselves.
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	cfg := testConfig()
	svc := services.New(cfg, logger, testSnapshot(), nil)
	h := New(logger, cfg, svc)

	router := gin.New()
	router.GET("/health", h.Health.Check)

	api := router.Group("/api/v1")
	restaurants := api.Group("/restaurants")
	restaurants.POST("/recommendations/by-tags", h.Restaurant.RecommendByTags)
	restaurants.POST("/recommendations/by-preferences", h.Restaurant.RecommendByPreferences)
	restaurants.GET("/recommendations/user/:userId", h.Restaurant.RecommendForUser)
	restaurants.GET("/recommendations/user/:userId/advanced", h.Restaurant.RecommendForUserAdvanced)
	restaurants.GET("/recommendations/user/:userId/collaborative", h.Restaurant.RecommendCollaborative)
	restaurants.GET("/recommendations/user/:userId/hybrid", h.Restaurant.RecommendHybrid)
	restaurants.GET("/:restaurantId/similar", h.Restaurant.RecommendSimilar)
	restaurants.GET("/:restaurantId/reviews/recommended", h.Restaurant.RecommendedReviews)

	posts := api.Group("/posts")
	posts.GET("/recommendations/user/:userId", h.Post.Feed)

	return router
}

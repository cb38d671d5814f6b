package services

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/tablepick/reco/internal/config"
	"github.com/tablepick/reco/internal/snapshot"
)

// Services wires the snapshot-backed engines together once at startup.
type Services struct {
	Restaurants   *RestaurantRecommender
	Posts         *PostRecommender
	Health        *HealthService
	Cache         *ResultCache
	Profiles      *ProfileResolver
	Collaborative *CollaborativeEngine
}

func New(cfg *config.Config, logger *logrus.Logger, snap *snapshot.Snapshot, redisClient *redis.Client) *Services {
	cache := NewResultCache(redisClient, cfg.Redis.ResultTTL, snap.ID, logger)
	profiles := NewProfileResolver(snap)
	collaborative := NewCollaborativeEngine(snap, logger)

	return &Services{
		Restaurants:   NewRestaurantRecommender(snap, profiles, collaborative, &cfg.Recommendation, logger, cache),
		Posts:         NewPostRecommender(snap, profiles, &cfg.Recommendation, logger, cache),
		Health:        NewHealthService(logger, snap, cache),
		Cache:         cache,
		Profiles:      profiles,
		Collaborative: collaborative,
	}
}

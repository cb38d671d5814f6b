package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tablepick/reco/internal/config"
	"github.com/tablepick/reco/internal/snapshot"
	"github.com/tablepick/reco/pkg/models"
)

// PostRecommender builds the paged review feed. It carries its own
// vector space over per-restaurant review text (tags plus bodies, no
// stopword filtering) so feed ranking and restaurant ranking stay
// independently tunable.
type PostRecommender struct {
	snapshot *snapshot.Snapshot
	index    *TFIDFIndex
	profiles *ProfileResolver
	config   *config.RecommendationConfig
	logger   *logrus.Logger
	cache    *ResultCache
}

func NewPostRecommender(
	snap *snapshot.Snapshot,
	profiles *ProfileResolver,
	cfg *config.RecommendationConfig,
	logger *logrus.Logger,
	cache *ResultCache,
) *PostRecommender {
	corpus := make([]string, len(snap.Restaurants))
	for i := range snap.Restaurants {
		corpus[i] = BuildPostText(&snap.Restaurants[i])
	}

	index := NewTFIDFIndex(corpus, nil)
	logger.WithFields(logrus.Fields{
		"snapshot_id": snap.ID,
		"documents":   index.Len(),
		"vocabulary":  index.VocabularySize(),
	}).Info("Post vector space built")

	return &PostRecommender{
		snapshot: snap,
		index:    index,
		profiles: profiles,
		config:   cfg,
		logger:   logger,
		cache:    cache,
	}
}

// RankPostsForUser returns one page of the user's review feed and
// whether it came from the result cache.
// Restaurants are ranked against the user's tags, each restaurant
// contributes its overlap-ordered reviews, and the flattened sequence is
// windowed. The full ordering is deterministic, so pages are disjoint
// and concatenate back into it.
func (p *PostRecommender) RankPostsForUser(ctx context.Context, userID int64, page, size int) ([]models.RecommendedReview, bool) {
	if page < 0 || size <= 0 {
		return nil, false
	}
	if p.config.MaxPageSize > 0 && size > p.config.MaxPageSize {
		size = p.config.MaxPageSize
	}

	var result []models.RecommendedReview
	key := p.cache.Key("post_feed", userID, page, size)
	if p.cache.Get(ctx, "post_feed", key, &result) {
		return result, true
	}

	tags := p.profiles.Tags(userID)
	if len(tags) == 0 {
		return nil, false
	}

	result = pageWindow(p.buildFeed(tags), page, size)
	if len(result) > 0 {
		p.cache.Set(ctx, key, result)
	}
	return result, false
}

// buildFeed flattens every restaurant's selected reviews in restaurant
// rank order. The window is applied by the caller, so the whole corpus
// is ranked here; snapshots are small enough that this stays cheap.
func (p *PostRecommender) buildFeed(tags []string) []models.RecommendedReview {
	ranked := p.index.TopKByQuery(strings.Join(tags, " "), p.index.Len())

	var feed []models.RecommendedReview
	for _, candidate := range ranked {
		restaurant := &p.snapshot.Restaurants[candidate.Position]
		for _, scored := range SelectReviewsByOverlap(restaurant.Reviews, tags, p.config.PostMinBodyLen) {
			feed = append(feed, models.RecommendedReview{
				RestaurantID:   restaurant.ID,
				RestaurantName: restaurant.Name,
				Address:        restaurant.Address,
				Body:           scored.Review.Body,
				Tags:           scored.Review.Tags,
				Images:         scored.Review.Images,
				CreatedAt:      scored.Review.CreatedAt,
				TagSimilarity:  scored.Similarity,
			})
		}
	}
	return feed
}

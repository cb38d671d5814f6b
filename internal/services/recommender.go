package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tablepick/reco/internal/config"
	"github.com/tablepick/reco/internal/snapshot"
	"github.com/tablepick/reco/pkg/models"
)

// RestaurantRecommender is the content-based and hybrid ranking facade.
// Everything it holds is built once from the snapshot and read-only
// afterwards; each method is a pure computation over that state plus
// request-scoped allocations, so concurrent requests need no locking.
type RestaurantRecommender struct {
	snapshot      *snapshot.Snapshot
	index         *TFIDFIndex
	profiles      *ProfileResolver
	collaborative *CollaborativeEngine
	peers         PeerFinder
	config        *config.RecommendationConfig
	logger        *logrus.Logger
	cache         *ResultCache

	positionByID map[int64]int
}

func NewRestaurantRecommender(
	snap *snapshot.Snapshot,
	profiles *ProfileResolver,
	collaborative *CollaborativeEngine,
	cfg *config.RecommendationConfig,
	logger *logrus.Logger,
	cache *ResultCache,
) *RestaurantRecommender {
	corpus := make([]string, len(snap.Restaurants))
	positionByID := make(map[int64]int, len(snap.Restaurants))
	for i := range snap.Restaurants {
		corpus[i] = BuildFeatureText(&snap.Restaurants[i])
		positionByID[snap.Restaurants[i].ID] = i
	}

	index := NewTFIDFIndex(corpus, englishStopwords)
	logger.WithFields(logrus.Fields{
		"snapshot_id": snap.ID,
		"documents":   index.Len(),
		"vocabulary":  index.VocabularySize(),
	}).Info("Restaurant vector space built")

	return &RestaurantRecommender{
		snapshot:      snap,
		index:         index,
		profiles:      profiles,
		collaborative: collaborative,
		peers:         collaborative,
		config:        cfg,
		logger:        logger,
		cache:         cache,
		positionByID:  positionByID,
	}
}

// RecommendByTags ranks restaurants against a free-text tag list.
func (r *RestaurantRecommender) RecommendByTags(tags []string, topN int) []models.RestaurantRecommendation {
	topN = r.clamp(topN)
	if topN == 0 || len(tags) == 0 {
		return nil
	}
	ranked := r.index.TopKByQuery(strings.Join(tags, " "), topN)
	return r.toRecommendations(ranked)
}

// RecommendSimilar ranks restaurants by similarity to one of their own.
// Unknown ids yield an empty result.
func (r *RestaurantRecommender) RecommendSimilar(restaurantID int64, topN int) []models.RestaurantRecommendation {
	topN = r.clamp(topN)
	if topN == 0 {
		return nil
	}
	position, ok := r.positionByID[restaurantID]
	if !ok {
		return nil
	}
	return r.toRecommendations(r.index.TopKSimilarTo(position, topN))
}

// RecommendByPreferences ranks by preference tags with an optional geo
// gate. Candidates are oversampled before the gate so the filtered list
// can still fill topN; once the gate applies, distance is the sole
// ordering key.
func (r *RestaurantRecommender) RecommendByPreferences(tags []string, location *models.LocationData, topN int) []models.RestaurantRecommendation {
	topN = r.clamp(topN)
	if topN == 0 || len(tags) == 0 {
		return nil
	}

	ranked := r.index.TopKByQuery(strings.Join(tags, " "), topN*r.oversample())
	if location == nil {
		if len(ranked) > topN {
			ranked = ranked[:topN]
		}
		return r.toRecommendations(ranked)
	}

	maxKm := r.config.DefaultMaxDistanceKm
	if location.MaxDistanceKm != nil {
		maxKm = *location.MaxDistanceKm
	}
	gated := FilterByRadius(ranked, r.snapshot.Restaurants, location.Latitude, location.Longitude, maxKm)
	if len(gated) > topN {
		gated = gated[:topN]
	}

	result := make([]models.RestaurantRecommendation, 0, len(gated))
	for _, candidate := range gated {
		row := r.toRecommendation(candidate.Position, candidate.Score)
		distance := candidate.DistanceKm
		row.DistanceKm = &distance
		result = append(result, row)
	}
	return result
}

// RecommendForUser ranks by the user's declared tags. An unknown user or
// an empty tag set cannot be personalized and yields an empty result.
func (r *RestaurantRecommender) RecommendForUser(ctx context.Context, userID int64, topN int) ([]models.RestaurantRecommendation, bool) {
	var result []models.RestaurantRecommendation
	key := r.cache.Key("for_user", userID, topN)
	if r.cache.Get(ctx, "for_user", key, &result) {
		return result, true
	}

	tags := r.profiles.Tags(userID)
	if len(tags) == 0 {
		return nil, false
	}
	result = r.RecommendByPreferences(tags, nil, topN)
	if len(result) > 0 {
		r.cache.Set(ctx, key, result)
	}
	return result, false
}

// RecommendForUserAdvanced is the history-aware variant: restaurants the
// user already visited are excluded from the oversampled candidate list.
func (r *RestaurantRecommender) RecommendForUserAdvanced(ctx context.Context, userID int64, topN int) ([]models.RestaurantRecommendation, bool) {
	var result []models.RestaurantRecommendation
	key := r.cache.Key("for_user_advanced", userID, topN)
	if r.cache.Get(ctx, "for_user_advanced", key, &result) {
		return result, true
	}

	result = r.toRecommendations(r.rankForUserExcludingVisits(userID, topN))
	if len(result) > 0 {
		r.cache.Set(ctx, key, result)
	}
	return result, false
}

// RecommendCollaborative surfaces restaurants from peer visit histories.
// The score carried on each row is the peer visit frequency.
func (r *RestaurantRecommender) RecommendCollaborative(ctx context.Context, userID int64, topN int) ([]models.RestaurantRecommendation, bool) {
	topN = r.clamp(topN)
	if topN == 0 {
		return nil, false
	}

	var result []models.RestaurantRecommendation
	key := r.cache.Key("collaborative", userID, topN)
	if r.cache.Get(ctx, "collaborative", key, &result) {
		return result, true
	}

	for _, candidate := range r.collaborative.Candidates(userID, r.config.SimilarUserCount, topN) {
		position, ok := r.positionByID[candidate.RestaurantID]
		if !ok {
			continue
		}
		result = append(result, r.toRecommendation(position, float64(candidate.Frequency)))
	}
	if len(result) > 0 {
		r.cache.Set(ctx, key, result)
	}
	return result, false
}

// RecommendHybrid fuses the content-based and collaborative candidate
// lists with the rank-membership rule.
func (r *RestaurantRecommender) RecommendHybrid(ctx context.Context, userID int64, topN int) ([]models.RestaurantRecommendation, bool) {
	topN = r.clamp(topN)
	if topN == 0 {
		return nil, false
	}

	var result []models.RestaurantRecommendation
	key := r.cache.Key("hybrid", userID, topN)
	if r.cache.Get(ctx, "hybrid", key, &result) {
		return result, true
	}

	var contentIDs []int64
	for _, candidate := range r.rankForUserExcludingVisits(userID, topN) {
		contentIDs = append(contentIDs, r.snapshot.Restaurants[candidate.Position].ID)
	}
	var collaborativeIDs []int64
	for _, candidate := range r.collaborative.Candidates(userID, r.config.SimilarUserCount, topN) {
		collaborativeIDs = append(collaborativeIDs, candidate.RestaurantID)
	}

	for _, id := range Fuse(contentIDs, collaborativeIDs, topN) {
		position, ok := r.positionByID[id]
		if !ok {
			continue
		}
		result = append(result, r.toRecommendation(position, 0))
	}
	if len(result) > 0 {
		r.cache.Set(ctx, key, result)
	}
	return result, false
}

// RecommendedReviews picks the reviews worth showing for one restaurant,
// scored against the user's declared tags (quality-gated policy).
func (r *RestaurantRecommender) RecommendedReviews(restaurantID, userID int64, k int) []models.RecommendedReview {
	if k <= 0 {
		return nil
	}
	restaurant, ok := r.snapshot.Restaurant(restaurantID)
	if !ok {
		return nil
	}

	tags := r.profiles.Tags(userID)
	selected := SelectTopReviews(restaurant.Reviews, tags, r.config.ReviewMinBodyLen, k)

	result := make([]models.RecommendedReview, 0, len(selected))
	for _, scored := range selected {
		result = append(result, models.RecommendedReview{
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
	return result
}

// rankForUserExcludingVisits oversamples the tag-based ranking and drops
// already-visited restaurants before truncating to topN.
func (r *RestaurantRecommender) rankForUserExcludingVisits(userID int64, topN int) []ScoredDocument {
	topN = r.clamp(topN)
	if topN == 0 {
		return nil
	}
	tags := r.profiles.Tags(userID)
	if len(tags) == 0 {
		return nil
	}

	visited := make(map[int64]struct{})
	for _, id := range r.profiles.Visits(userID) {
		visited[id] = struct{}{}
	}

	ranked := r.index.TopKByQuery(strings.Join(tags, " "), topN*r.oversample())
	kept := ranked[:0]
	for _, candidate := range ranked {
		id := r.snapshot.Restaurants[candidate.Position].ID
		if _, ok := visited[id]; ok {
			continue
		}
		kept = append(kept, candidate)
	}
	if len(kept) > topN {
		kept = kept[:topN]
	}
	return kept
}

func (r *RestaurantRecommender) toRecommendations(ranked []ScoredDocument) []models.RestaurantRecommendation {
	result := make([]models.RestaurantRecommendation, 0, len(ranked))
	for _, candidate := range ranked {
		result = append(result, r.toRecommendation(candidate.Position, candidate.Score))
	}
	return result
}

func (r *RestaurantRecommender) toRecommendation(position int, score float64) models.RestaurantRecommendation {
	restaurant := &r.snapshot.Restaurants[position]
	return models.RestaurantRecommendation{
		RestaurantID: restaurant.ID,
		Name:         restaurant.Name,
		Address:      restaurant.Address,
		Category:     restaurant.Category,
		Score:        score,
	}
}

func (r *RestaurantRecommender) clamp(topN int) int {
	if topN <= 0 {
		return 0
	}
	if r.config.MaxTopN > 0 && topN > r.config.MaxTopN {
		return r.config.MaxTopN
	}
	return topN
}

func (r *RestaurantRecommender) oversample() int {
	if r.config.OversampleFactor > 1 {
		return r.config.OversampleFactor
	}
	return 1
}

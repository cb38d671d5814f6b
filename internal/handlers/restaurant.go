package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/tablepick/reco/internal/config"
	"github.com/tablepick/reco/internal/metrics"
	"github.com/tablepick/reco/internal/services"
	"github.com/tablepick/reco/pkg/models"
)

type RestaurantHandler struct {
	logger      *logrus.Logger
	config      *config.RecommendationConfig
	recommender *services.RestaurantRecommender
	validator   *validator.Validate
}

func NewRestaurantHandler(logger *logrus.Logger, cfg *config.RecommendationConfig, recommender *services.RestaurantRecommender) *RestaurantHandler {
	return &RestaurantHandler{
		logger:      logger,
		config:      cfg,
		recommender: recommender,
		validator:   validator.New(),
	}
}

// RecommendByTags ranks restaurants against an explicit tag list.
func (h *RestaurantHandler) RecommendByTags(c *gin.Context) {
	started := time.Now()

	var request models.TagPreferencesRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", "Invalid request body format")
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		h.logger.WithError(err).Error("Validation failed for tag preferences request")
		errorResponse(c, http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed")
		return
	}

	topN := request.TopN
	if topN == 0 {
		topN = h.config.DefaultTopN
	}

	result := h.recommender.RecommendByTags(request.Tags, topN)
	h.respond(c, "by_tags", started, result, false)
}

// RecommendSimilar ranks restaurants similar to the one in the path.
func (h *RestaurantHandler) RecommendSimilar(c *gin.Context) {
	started := time.Now()

	restaurantID, ok := pathID(c, "restaurantId")
	if !ok {
		return
	}
	topN := queryInt(c, "count", h.config.DefaultTopN, 1, h.config.MaxTopN)

	result := h.recommender.RecommendSimilar(restaurantID, topN)
	h.respond(c, "similar", started, result, false)
}

// RecommendByPreferences ranks by tags with an optional geo gate.
func (h *RestaurantHandler) RecommendByPreferences(c *gin.Context) {
	started := time.Now()

	var request models.PreferenceRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", "Invalid request body format")
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		h.logger.WithError(err).Error("Validation failed for preference request")
		errorResponse(c, http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed")
		return
	}

	topN := request.TopN
	if topN == 0 {
		topN = h.config.DefaultTopN
	}

	result := h.recommender.RecommendByPreferences(request.Tags, request.Location, topN)
	h.respond(c, "by_preferences", started, result, false)
}

// RecommendForUser ranks by the user's declared tags.
func (h *RestaurantHandler) RecommendForUser(c *gin.Context) {
	started := time.Now()

	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	topN := queryInt(c, "count", h.config.DefaultTopN, 1, h.config.MaxTopN)

	result, cacheHit := h.recommender.RecommendForUser(c.Request.Context(), userID, topN)
	h.respond(c, "for_user", started, result, cacheHit)
}

// RecommendForUserAdvanced is the history-aware variant.
func (h *RestaurantHandler) RecommendForUserAdvanced(c *gin.Context) {
	started := time.Now()

	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	topN := queryInt(c, "count", h.config.DefaultTopN, 1, h.config.MaxTopN)

	result, cacheHit := h.recommender.RecommendForUserAdvanced(c.Request.Context(), userID, topN)
	h.respond(c, "for_user_advanced", started, result, cacheHit)
}

// RecommendCollaborative surfaces restaurants from peer visit histories.
func (h *RestaurantHandler) RecommendCollaborative(c *gin.Context) {
	started := time.Now()

	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	topN := queryInt(c, "count", h.config.DefaultTopN, 1, h.config.MaxTopN)

	result, cacheHit := h.recommender.RecommendCollaborative(c.Request.Context(), userID, topN)
	h.respond(c, "collaborative", started, result, cacheHit)
}

// RecommendHybrid fuses the content-based and collaborative rankings.
func (h *RestaurantHandler) RecommendHybrid(c *gin.Context) {
	started := time.Now()

	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	topN := queryInt(c, "count", h.config.DefaultTopN, 1, h.config.MaxTopN)

	result, cacheHit := h.recommender.RecommendHybrid(c.Request.Context(), userID, topN)
	h.respond(c, "hybrid", started, result, cacheHit)
}

// RecommendedReviews returns the reviews worth showing for a restaurant,
// personalized by the user_id query parameter.
func (h *RestaurantHandler) RecommendedReviews(c *gin.Context) {
	started := time.Now()

	restaurantID, ok := pathID(c, "restaurantId")
	if !ok {
		return
	}
	userID, ok := queryID(c, "user_id")
	if !ok {
		return
	}
	count := queryInt(c, "count", h.config.ReviewTopN, 1, h.config.MaxTopN)

	result := h.recommender.RecommendedReviews(restaurantID, userID, count)
	if len(result) == 0 {
		metrics.ObserveRequest("recommended_reviews", "not_found", started, 0)
		errorResponse(c, http.StatusNotFound, "NO_RECOMMENDED_REVIEWS",
			"No recommendable reviews for this restaurant")
		return
	}

	metrics.ObserveRequest("recommended_reviews", "success", started, len(result))
	c.JSON(http.StatusOK, gin.H{
		"reviews":      result,
		"generated_at": time.Now().UTC(),
	})
}

// respond applies the shared empty-is-404 contract and instrumentation.
func (h *RestaurantHandler) respond(c *gin.Context, operation string, started time.Time, result []models.RestaurantRecommendation, cacheHit bool) {
	if len(result) == 0 {
		metrics.ObserveRequest(operation, "not_found", started, 0)
		errorResponse(c, http.StatusNotFound, "NO_RECOMMENDATIONS",
			"No recommendations available for this request")
		return
	}

	metrics.ObserveRequest(operation, "success", started, len(result))
	c.JSON(http.StatusOK, models.RecommendationResponse{
		Recommendations: result,
		GeneratedAt:     time.Now().UTC(),
		CacheHit:        cacheHit,
	})
}

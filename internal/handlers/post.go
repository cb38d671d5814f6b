package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tablepick/reco/internal/config"
	"github.com/tablepick/reco/internal/metrics"
	"github.com/tablepick/reco/internal/services"
	"github.com/tablepick/reco/pkg/models"
)

type PostHandler struct {
	logger      *logrus.Logger
	config      *config.RecommendationConfig
	recommender *services.PostRecommender
}

func NewPostHandler(logger *logrus.Logger, cfg *config.RecommendationConfig, recommender *services.PostRecommender) *PostHandler {
	return &PostHandler{
		logger:      logger,
		config:      cfg,
		recommender: recommender,
	}
}

// Feed returns one page of the user's personalized review feed.
func (h *PostHandler) Feed(c *gin.Context) {
	started := time.Now()

	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	page := queryInt(c, "page", 0, 0, 1<<30)
	size := queryInt(c, "size", h.config.DefaultPageSize, 1, h.config.MaxPageSize)

	posts, cacheHit := h.recommender.RankPostsForUser(c.Request.Context(), userID, page, size)
	if len(posts) == 0 {
		metrics.ObserveRequest("post_feed", "not_found", started, 0)
		errorResponse(c, http.StatusNotFound, "NO_POSTS",
			"No posts available for this user and page")
		return
	}

	metrics.ObserveRequest("post_feed", "success", started, len(posts))
	c.JSON(http.StatusOK, models.PostFeedResponse{
		Posts:       posts,
		Page:        page,
		Size:        size,
		GeneratedAt: time.Now().UTC(),
		CacheHit:    cacheHit,
	})
}

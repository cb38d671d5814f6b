package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tablepick/reco/internal/config"
	"github.com/tablepick/reco/internal/services"
)

type Handlers struct {
	Health     *HealthHandler
	Restaurant *RestaurantHandler
	Post       *PostHandler
}

func New(logger *logrus.Logger, cfg *config.Config, services *services.Services) *Handlers {
	return &Handlers{
		Health:     NewHealthHandler(logger, services.Health),
		Restaurant: NewRestaurantHandler(logger, &cfg.Recommendation, services.Restaurants),
		Post:       NewPostHandler(logger, &cfg.Recommendation, services.Posts),
	}
}

func errorResponse(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// pathID parses a numeric path parameter, replying 400 on failure.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 0 {
		errorResponse(c, http.StatusBadRequest, "INVALID_PATH_PARAM",
			name+" must be a non-negative integer id")
		return 0, false
	}
	return id, true
}

// queryID parses a required numeric query parameter, replying 400 on
// failure.
func queryID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil || id < 0 {
		errorResponse(c, http.StatusBadRequest, "INVALID_QUERY_PARAM",
			name+" must be a non-negative integer id")
		return 0, false
	}
	return id, true
}

// queryInt parses an optional bounded integer query parameter, falling
// back to def when absent or out of range.
func queryInt(c *gin.Context, name string, def, min, max int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < min || value > max {
		return def
	}
	return value
}

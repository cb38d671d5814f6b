package models

import "time"

// TagPreferencesRequest is the body of tag-driven recommendation requests.
type TagPreferencesRequest struct {
	Tags []string `json:"tags" validate:"required,min=1,max=50,dive,min=1"`
	TopN int      `json:"top_n,omitempty" validate:"omitempty,min=1,max=100"`
}

// LocationData carries an optional geo gate for preference requests.
type LocationData struct {
	Latitude      float64  `json:"latitude" validate:"min=-90,max=90"`
	Longitude     float64  `json:"longitude" validate:"min=-180,max=180"`
	MaxDistanceKm *float64 `json:"max_distance_km,omitempty" validate:"omitempty,gt=0"`
}

// PreferenceRequest combines preference tags with an optional location.
type PreferenceRequest struct {
	Tags     []string      `json:"tags" validate:"required,min=1,max=50,dive,min=1"`
	TopN     int           `json:"top_n,omitempty" validate:"omitempty,min=1,max=100"`
	Location *LocationData `json:"location,omitempty" validate:"omitempty"`
}

// RestaurantRecommendation is one ranked result row.
type RestaurantRecommendation struct {
	RestaurantID int64    `json:"restaurant_id"`
	Name         string   `json:"name"`
	Address      string   `json:"address"`
	Category     string   `json:"category"`
	Score        float64  `json:"score"`
	DistanceKm   *float64 `json:"distance_km,omitempty"`
}

// RecommendationResponse wraps an ordered result list.
type RecommendationResponse struct {
	Recommendations []RestaurantRecommendation `json:"recommendations"`
	GeneratedAt     time.Time                  `json:"generated_at"`
	CacheHit        bool                       `json:"cache_hit"`
}

// RecommendedReview is a review selected within one restaurant, scored
// against a preference tag set. TagSimilarity is request-scoped and never
// stored on the snapshot.
type RecommendedReview struct {
	RestaurantID   int64      `json:"restaurant_id"`
	RestaurantName string     `json:"restaurant_name"`
	Address        string     `json:"address"`
	Body           string     `json:"body"`
	Tags           []string   `json:"tags"`
	Images         []string   `json:"images,omitempty"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
	TagSimilarity  float64    `json:"tag_similarity"`
}

// PostFeedResponse is one page of the personalized post feed.
type PostFeedResponse struct {
	Posts       []RecommendedReview `json:"posts"`
	Page        int                 `json:"page"`
	Size        int                 `json:"size"`
	GeneratedAt time.Time           `json:"generated_at"`
	CacheHit    bool                `json:"cache_hit"`
}

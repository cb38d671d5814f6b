package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablepick/reco/pkg/models"
)

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeRecommendations(t *testing.T, recorder *httptest.ResponseRecorder) models.RecommendationResponse {
	t.Helper()
	var response models.RecommendationResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	return response
}

func errorCode(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	return envelope.Error.Code
}

func TestRecommendByTags(t *testing.T) {
	router := newTestRouter()

	recorder := doRequest(t, router, http.MethodPost, "/api/v1/restaurants/recommendations/by-tags",
		map[string]interface{}{"tags": []string{"cozy", "pasta"}})

	require.Equal(t, http.StatusOK, recorder.Code)
	response := decodeRecommendations(t, recorder)
	require.NotEmpty(t, response.Recommendations)
	assert.Equal(t, int64(0), response.Recommendations[0].RestaurantID)
	assert.Equal(t, "Cozy Pasta House", response.Recommendations[0].Name)
	assert.Greater(t, response.Recommendations[0].Score, 0.0)
	assert.False(t, response.CacheHit)
	assert.False(t, response.GeneratedAt.IsZero())
}

func TestRecommendByTagsRespectsTopN(t *testing.T) {
	router := newTestRouter()

	recorder := doRequest(t, router, http.MethodPost, "/api/v1/restaurants/recommendations/by-tags",
		map[string]interface{}{"tags": []string{"cozy"}, "top_n": 1})

	require.Equal(t, http.StatusOK, recorder.Code)
	response := decodeRecommendations(t, recorder)
	assert.Len(t, response.Recommendations, 1)
}

func TestRecommendByTagsRejectsBadInput(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name         string
		body         interface{}
		raw          string
		expectedCode string
	}{
		{
			name:         "malformed json",
			raw:          `{"tags": [`,
			expectedCode: "INVALID_REQUEST_BODY",
		},
		{
			name:         "missing tags",
			body:         map[string]interface{}{},
			expectedCode: "VALIDATION_FAILED",
		},
		{
			name:         "empty tags",
			body:         map[string]interface{}{"tags": []string{}},
			expectedCode: "VALIDATION_FAILED",
		},
		{
			name:         "top_n out of range",
			body:         map[string]interface{}{"tags": []string{"cozy"}, "top_n": 1000},
			expectedCode: "VALIDATION_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var recorder *httptest.ResponseRecorder
			if tt.raw != "" {
				req := httptest.NewRequest(http.MethodPost,
					"/api/v1/restaurants/recommendations/by-tags", bytes.NewReader([]byte(tt.raw)))
				req.Header.Set("Content-Type", "application/json")
				recorder = httptest.NewRecorder()
				router.ServeHTTP(recorder, req)
			} else {
				recorder = doRequest(t, router, http.MethodPost,
					"/api/v1/restaurants/recommendations/by-tags", tt.body)
			}

			assert.Equal(t, http.StatusBadRequest, recorder.Code)
			assert.Equal(t, tt.expectedCode, errorCode(t, recorder))
		})
	}
}

func TestRecommendByPreferencesWithLocation(t *testing.T) {
	router := newTestRouter()

	recorder := doRequest(t, router, http.MethodPost, "/api/v1/restaurants/recommendations/by-preferences",
		map[string]interface{}{
			"tags": []string{"cozy", "pasta"},
			"location": map[string]interface{}{
				"latitude":  37.500,
				"longitude": 127.000,
			},
		})

	require.Equal(t, http.StatusOK, recorder.Code)
	response := decodeRecommendations(t, recorder)
	require.Len(t, response.Recommendations, 2)

	// Restaurant 2 carries no coordinates and never survives the geo gate.
	assert.Equal(t, int64(0), response.Recommendations[0].RestaurantID)
	assert.Equal(t, int64(1), response.Recommendations[1].RestaurantID)
	for _, rec := range response.Recommendations {
		require.NotNil(t, rec.DistanceKm)
	}
	assert.Less(t, *response.Recommendations[0].DistanceKm, *response.Recommendations[1].DistanceKm)
}

func TestRecommendByPreferencesRejectsBadLatitude(t *testing.T) {
	router := newTestRouter()

	recorder := doRequest(t, router, http.MethodPost, "/api/v1/restaurants/recommendations/by-preferences",
		map[string]interface{}{
			"tags": []string{"cozy"},
			"location": map[string]interface{}{
				"latitude":  200.0,
				"longitude": 127.000,
			},
		})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, recorder))
}

func TestRecommendSimilar(t *testing.T) {
	router := newTestRouter()

	recorder := doRequest(t, router, http.MethodGet, "/api/v1/restaurants/0/similar", nil)

	require.Equal(t, http.StatusOK, recorder.Code)
	response := decodeRecommendations(t, recorder)
	require.Len(t, response.Recommendations, 2)
	for _, rec := range response.Recommendations {
		assert.NotEqual(t, int64(0), rec.RestaurantID)
	}
}

func TestRecommendSimilarRejectsBadID(t *testing.T) {
	router := newTestRouter()

	recorder := doRequest(t, router, http.MethodGet, "/api/v1/restaurants/abc/similar", nil)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "INVALID_PATH_PARAM", errorCode(t, recorder))
}

func TestRecommendForUser(t *testing.T) {
	router := newTestRouter()

	recorder := doRequest(t, router, http.MethodGet,
		"/api/v1/restaurants/recommendations/user/1?count=2", nil)

	require.Equal(t, http.StatusOK, recorder.Code)
	response := decodeRecommendations(t, recorder)
	require.Len(t, response.Recommendations, 2)
	assert.Equal(t, int64(0), response.Recommendations[0].RestaurantID)
	assert.False(t, response.CacheHit)
}

func TestRecommendForUserWithoutTagsIsNotFound(t *testing.T) {
	router := newTestRouter()

	recorder := doRequest(t, router, http.MethodGet,
		"/api/v1/restaurants/recommendations/user/99", nil)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "NO_RECOMMENDATIONS", errorCode(t, recorder))
}

func TestRecommendForUserAdvancedExcludesVisited(t *testing.T) {
	router := newTestRouter()

	recorder := doRequest(t, router, http.MethodGet,
		"/api/v1/restaurants/recommendations/user/2/advanced", nil)

	require.Equal(t, http.StatusOK, recorder.Code)
	response := decodeRecommendations(t, recorder)
	require.NotEmpty(t, response.Recommendations)
	for _, rec := range response.Recommendations {
		assert.NotEqual(t, int64(1), rec.RestaurantID, "visited restaurant must be excluded")
	}
}

func TestRecommendCollaborative(t *testing.T) {
	router := newTestRouter()

	recorder := doRequest(t, router, http.MethodGet,
		"/api/v1/restaurants/recommendations/user/1/collaborative", nil)

	require.Equal(t, http.StatusOK, recorder.Code)
	response := decodeRecommendations(t, recorder)
	require.Len(t, response.Recommendations, 1)
	assert.Equal(t, int64(1), response.Recommendations[0].RestaurantID)
}

func TestRecommendHybrid(t *testing.T) {
	router := newTestRouter()

	recorder := doRequest(t, router, http.MethodGet,
		"/api/v1/restaurants/recommendations/user/1/hybrid", nil)

	require.Equal(t, http.StatusOK, recorder.Code)
	response := decodeRecommendations(t, recorder)
	require.Len(t, response.Recommendations, 3)

	// Peer history surfaces restaurant 1 ahead of the pure content order.
	assert.Equal(t, int64(1), response.Recommendations[0].RestaurantID)
	assert.Equal(t, int64(0), response.Recommendations[1].RestaurantID)
}

func TestRecommendedReviews(t *testing.T) {
	router := newTestRouter()

	recorder := doRequest(t, router, http.MethodGet,
		"/api/v1/restaurants/0/reviews/recommended?user_id=1", nil)

	require.Equal(t, http.StatusOK, recorder.Code)

	var response struct {
		Reviews []models.RecommendedReview `json:"reviews"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	require.Len(t, response.Reviews, 1)
	assert.Equal(t, int64(0), response.Reviews[0].RestaurantID)
	assert.InDelta(t, 1.0, response.Reviews[0].TagSimilarity, 1e-12)
}

func TestRecommendedReviewsRequiresUserID(t *testing.T) {
	router := newTestRouter()

	recorder := doRequest(t, router, http.MethodGet,
		"/api/v1/restaurants/0/reviews/recommended", nil)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "INVALID_QUERY_PARAM", errorCode(t, recorder))
}

func TestRecommendedReviewsUnknownRestaurant(t *testing.T) {
	router := newTestRouter()

	recorder := doRequest(t, router, http.MethodGet,
		"/api/v1/restaurants/99/reviews/recommended?user_id=1", nil)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "NO_RECOMMENDED_REVIEWS", errorCode(t, recorder))
}

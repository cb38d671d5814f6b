package services

import (
	"strings"

	"github.com/tablepick/reco/pkg/models"
)

// BuildFeatureText flattens a restaurant into the single normalized text
// blob the vector space is built over: review tags (duplicates kept so
// frequency carries signal), category, menu names, review bodies.
// Missing fields contribute nothing; the result is deterministic.
func BuildFeatureText(r *models.Restaurant) string {
	var parts []string
	for _, review := range r.Reviews {
		parts = append(parts, review.Tags...)
	}
	if r.Category != "" {
		parts = append(parts, r.Category)
	}
	for _, menu := range r.Menus {
		if menu.Name != "" {
			parts = append(parts, menu.Name)
		}
	}
	for _, review := range r.Reviews {
		if review.Body != "" {
			parts = append(parts, review.Body)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// BuildPostText flattens a restaurant's attached posts into the document
// used by the post feed's vector space: per review, its tags then its body.
func BuildPostText(r *models.Restaurant) string {
	var parts []string
	for _, review := range r.Reviews {
		parts = append(parts, review.Tags...)
		if review.Body != "" {
			parts = append(parts, review.Body)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

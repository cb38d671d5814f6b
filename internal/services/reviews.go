package services

import (
	"sort"
	"unicode/utf8"

	"github.com/tablepick/reco/pkg/models"
)

// ScoredReview is a review annotated with its request-scoped tag overlap.
// Position is the review's index in the owning restaurant's list and is
// the final tie-break, keeping every ordering stable.
type ScoredReview struct {
	Position   int
	Review     models.Review
	Similarity float64
}

// SelectTopReviews is the quality-gated picker: reviews without an image
// reference or with a body shorter than minBodyLen (in runes) are dropped,
// the rest are ordered by tag overlap then recency, both descending, and
// the top k are returned. Missing timestamps sort as the earliest possible
// time.
func SelectTopReviews(reviews []models.Review, preferenceTags []string, minBodyLen, k int) []ScoredReview {
	if k <= 0 {
		return nil
	}

	var kept []ScoredReview
	for i, review := range reviews {
		if !review.HasImages() {
			continue
		}
		if utf8.RuneCountInString(review.Body) < minBodyLen {
			continue
		}
		kept = append(kept, ScoredReview{
			Position:   i,
			Review:     review,
			Similarity: jaccardSimilarity(review.Tags, preferenceTags),
		})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Similarity != kept[j].Similarity {
			return kept[i].Similarity > kept[j].Similarity
		}
		return kept[i].Review.CreatedAtOrZero().After(kept[j].Review.CreatedAtOrZero())
	})
	if len(kept) > k {
		kept = kept[:k]
	}
	return kept
}

// SelectReviewsByOverlap is the ungated variant used by the post feed:
// only the minimum body length applies, and ordering is by tag overlap
// alone, stable under ties so pagination over the result never skips or
// duplicates an item.
func SelectReviewsByOverlap(reviews []models.Review, preferenceTags []string, minBodyLen int) []ScoredReview {
	var kept []ScoredReview
	for i, review := range reviews {
		if utf8.RuneCountInString(review.Body) < minBodyLen {
			continue
		}
		kept = append(kept, ScoredReview{
			Position:   i,
			Review:     review,
			Similarity: jaccardSimilarity(review.Tags, preferenceTags),
		})
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Similarity > kept[j].Similarity
	})
	return kept
}

// SelectReviewPage applies SelectReviewsByOverlap and returns the fixed
// window starting at page*size. Out-of-range pages and non-positive sizes
// yield an empty result rather than an error.
func SelectReviewPage(reviews []models.Review, preferenceTags []string, minBodyLen, page, size int) []ScoredReview {
	if page < 0 || size <= 0 {
		return nil
	}
	ranked := SelectReviewsByOverlap(reviews, preferenceTags, minBodyLen)
	return pageWindow(ranked, page, size)
}

func pageWindow[T any](ranked []T, page, size int) []T {
	start := page * size
	if start >= len(ranked) {
		return nil
	}
	end := start + size
	if end > len(ranked) {
		end = len(ranked)
	}
	return ranked[start:end]
}

package services

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/tablepick/reco/internal/snapshot"
)

// PeerFinder yields the users most similar to a given user. The Jaccard
// scan below is O(users) per call; the interface exists so a precomputed
// similarity store can replace it without touching the fusion contract.
type PeerFinder interface {
	SimilarUsers(userID int64, k int) []int64
}

// CollaborativeEngine derives candidates from the visit histories of
// tag-similar peers. It scans every user and every peer visit in memory
// on each call; the snapshot stays small enough that no index is kept.
type CollaborativeEngine struct {
	snapshot *snapshot.Snapshot
	logger   *logrus.Logger
}

func NewCollaborativeEngine(snap *snapshot.Snapshot, logger *logrus.Logger) *CollaborativeEngine {
	return &CollaborativeEngine{snapshot: snap, logger: logger}
}

// jaccardSimilarity is intersection over union of two tag sets; 0 when
// either set is empty.
func jaccardSimilarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]struct{}, len(a))
	for _, tag := range a {
		setA[tag] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, tag := range b {
		setB[tag] = struct{}{}
	}
	intersection := 0
	for tag := range setA {
		if _, ok := setB[tag]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// SimilarUsers ranks every other user by tag-set Jaccard similarity,
// descending, ties kept in user-table order.
func (e *CollaborativeEngine) SimilarUsers(userID int64, k int) []int64 {
	if k <= 0 {
		return nil
	}
	user, ok := e.snapshot.User(userID)
	if !ok {
		return nil
	}

	type peerScore struct {
		userID     int64
		similarity float64
	}
	peers := make([]peerScore, 0, len(e.snapshot.Users))
	for i := range e.snapshot.Users {
		other := &e.snapshot.Users[i]
		if other.UserID == userID {
			continue
		}
		peers = append(peers, peerScore{
			userID:     other.UserID,
			similarity: jaccardSimilarity(user.Tags, other.Tags),
		})
	}
	sort.SliceStable(peers, func(i, j int) bool {
		return peers[i].similarity > peers[j].similarity
	})
	if len(peers) > k {
		peers = peers[:k]
	}

	result := make([]int64, len(peers))
	for i, peer := range peers {
		result[i] = peer.userID
	}
	return result
}

// VisitCandidate is a restaurant surfaced through peer visit histories.
type VisitCandidate struct {
	RestaurantID int64
	Frequency    int
}

// Candidates unions the visit histories of the top peers, counts the
// visit frequency per restaurant, drops anything the requesting user has
// already visited, and returns candidates by descending frequency with
// first-seen order breaking ties. limit <= 0 returns everything.
func (e *CollaborativeEngine) Candidates(userID int64, peerCount, limit int) []VisitCandidate {
	peers := e.SimilarUsers(userID, peerCount)
	if len(peers) == 0 {
		return nil
	}

	own := make(map[int64]struct{})
	for _, id := range e.snapshot.VisitedBy(userID) {
		own[id] = struct{}{}
	}

	counts := make(map[int64]int)
	var firstSeen []int64
	for _, peer := range peers {
		for _, restaurantID := range e.snapshot.VisitedBy(peer) {
			if _, visited := own[restaurantID]; visited {
				continue
			}
			if _, seen := counts[restaurantID]; !seen {
				firstSeen = append(firstSeen, restaurantID)
			}
			counts[restaurantID]++
		}
	}

	candidates := make([]VisitCandidate, len(firstSeen))
	for i, restaurantID := range firstSeen {
		candidates[i] = VisitCandidate{RestaurantID: restaurantID, Frequency: counts[restaurantID]}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Frequency > candidates[j].Frequency
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

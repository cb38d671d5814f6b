package snapshot

import (
	"github.com/google/uuid"

	"github.com/tablepick/reco/pkg/models"
)

// Snapshot is the immutable data set the engine is built over. It is
// constructed once at startup and read concurrently without locking; a
// process restart is the only way to pick up new data. The UUID identifies
// this load so cache entries from different snapshots never mix.
type Snapshot struct {
	ID          uuid.UUID
	Restaurants []models.Restaurant
	Users       []models.UserProfile
	Visits      []models.Visit

	restaurantIndex map[int64]int
	userIndex       map[int64]int
	visitsByUser    map[int64][]int64
}

// New indexes the loaded tables. Restaurants must already carry their
// surrogate ids (assigned by the loader in table order).
func New(restaurants []models.Restaurant, users []models.UserProfile, visits []models.Visit) *Snapshot {
	s := &Snapshot{
		ID:              uuid.New(),
		Restaurants:     restaurants,
		Users:           users,
		Visits:          visits,
		restaurantIndex: make(map[int64]int, len(restaurants)),
		userIndex:       make(map[int64]int, len(users)),
		visitsByUser:    make(map[int64][]int64),
	}
	for i := range restaurants {
		s.restaurantIndex[restaurants[i].ID] = i
	}
	for i := range users {
		s.userIndex[users[i].UserID] = i
	}
	for _, visit := range visits {
		s.visitsByUser[visit.UserID] = append(s.visitsByUser[visit.UserID], visit.RestaurantID)
	}
	return s
}

// Restaurant looks up a restaurant by surrogate id.
func (s *Snapshot) Restaurant(id int64) (*models.Restaurant, bool) {
	i, ok := s.restaurantIndex[id]
	if !ok {
		return nil, false
	}
	return &s.Restaurants[i], true
}

// User looks up a user profile by id.
func (s *Snapshot) User(id int64) (*models.UserProfile, bool) {
	i, ok := s.userIndex[id]
	if !ok {
		return nil, false
	}
	return &s.Users[i], true
}

// VisitedBy returns the restaurant ids a user visited, in table order.
// Unknown users yield an empty list.
func (s *Snapshot) VisitedBy(userID int64) []int64 {
	return s.visitsByUser[userID]
}

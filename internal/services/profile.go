package services

import (
	"github.com/tablepick/reco/internal/snapshot"
)

// ProfileResolver looks up a user's declared tags and visit history from
// the loaded snapshot. Both lookups fail soft: an unknown user yields an
// empty result, which callers treat as "cannot personalize" and "no
// history to exclude" respectively.
type ProfileResolver struct {
	snapshot *snapshot.Snapshot
}

func NewProfileResolver(snap *snapshot.Snapshot) *ProfileResolver {
	return &ProfileResolver{snapshot: snap}
}

// Tags returns the user's declared preference tags.
func (p *ProfileResolver) Tags(userID int64) []string {
	user, ok := p.snapshot.User(userID)
	if !ok {
		return nil
	}
	return user.Tags
}

// Visits returns the restaurant ids the user has visited, in table order.
func (p *ProfileResolver) Visits(userID int64) []int64 {
	return p.snapshot.VisitedBy(userID)
}

package models

import "time"

// Restaurant is a rankable entity loaded once from the startup snapshot.
// ID is a surrogate assigned in table order at load time; row position is
// never reused as identity downstream.
type Restaurant struct {
	ID        int64      `json:"restaurant_id"`
	Name      string     `json:"name"`
	Address   string     `json:"address"`
	Category  string     `json:"category"`
	Latitude  *float64   `json:"latitude,omitempty"`
	Longitude *float64   `json:"longitude,omitempty"`
	Images    []string   `json:"images,omitempty"`
	Menus     []MenuItem `json:"menus,omitempty"`
	Reviews   []Review   `json:"reviews,omitempty"`
}

// HasCoordinates reports whether both coordinates are present.
func (r *Restaurant) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

type MenuItem struct {
	Name  string `json:"name"`
	Price string `json:"price,omitempty"`
}

// Review is a user-generated post attached to exactly one restaurant.
// Tag order is preserved for display; similarity treats tags as a set.
type Review struct {
	Tags      []string   `json:"tags"`
	Body      string     `json:"body"`
	Images    []string   `json:"images,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// HasImages reports whether the review carries at least one image reference.
func (r *Review) HasImages() bool {
	return len(r.Images) > 0
}

// CreatedAtOrZero returns the creation time, or the zero time when the
// timestamp is missing so that recency sorts stay total.
func (r *Review) CreatedAtOrZero() time.Time {
	if r.CreatedAt == nil {
		return time.Time{}
	}
	return *r.CreatedAt
}

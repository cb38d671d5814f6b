package models

// UserProfile holds a user's declared preference tags. Duplicate tags
// collapse to a set during similarity; the stored order is the table order.
type UserProfile struct {
	UserID int64    `json:"user_id"`
	Tags   []string `json:"tags"`
}

// Visit records that a user visited a restaurant. Rows keep table order,
// which approximates visit order in the exported snapshot.
type Visit struct {
	UserID       int64 `json:"user_id"`
	RestaurantID int64 `json:"restaurant_id"`
}

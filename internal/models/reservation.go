package models

import "time"

// Reservation is a claim on one unit of a product for the half-open
// window [StartAt, EndAt). Times are stored and compared as UTC instants.
type Reservation struct {
	ID            int64     `json:"id"`
	ProductID     int64     `json:"product_id"`
	UnitID        int64     `json:"unit_id"`
	UnitCode      string    `json:"unit_code,omitempty"`
	RequesterName string    `json:"requester_name"`
	RequesterCode string    `json:"requester_code,omitempty"`
	Purpose       string    `json:"purpose,omitempty"`
	StartAt       time.Time `json:"start_at"`
	EndAt         time.Time `json:"end_at"`
	Status        string    `json:"status"` // reserved, cancelled, completed
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Version       int64     `json:"version"`
}

// Overlaps reports whether two half-open windows intersect.
func (r *Reservation) Overlaps(startAt, endAt time.Time) bool {
	return r.StartAt.Before(endAt) && startAt.Before(r.EndAt)
}

// Bucket classifies the reservation relative to now.
func (r *Reservation) Bucket(now time.Time) string {
	switch {
	case r.StartAt.After(now):
		return BucketUpcoming
	case r.EndAt.Before(now):
		return BucketOverdue
	default:
		return BucketActive
	}
}

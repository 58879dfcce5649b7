package models

import "time"

// ProductAvailability summarizes how many units of a product are loanable
// at a campus. ActiveUnits is the status-derived headline count shown in
// the catalog; FreeUnits is the overlap-aware count for a concrete window
// and is only meaningful when a window was supplied.
type ProductAvailability struct {
	ProductID   int64      `json:"product_id"`
	Campus      string     `json:"campus"`
	ActiveUnits int        `json:"active_units"`
	FreeUnits   int        `json:"free_units"`
	WindowStart *time.Time `json:"window_start,omitempty"`
	WindowEnd   *time.Time `json:"window_end,omitempty"`
}

// VerificationBuckets partitions open reservations relative to Now.
// The three slices are disjoint and cover every reserved row.
type VerificationBuckets struct {
	Now      time.Time      `json:"now"`
	Upcoming []*Reservation `json:"upcoming"`
	Active   []*Reservation `json:"active"`
	Overdue  []*Reservation `json:"overdue"`
}

// Total returns the number of bucketized reservations.
func (b *VerificationBuckets) Total() int {
	return len(b.Upcoming) + len(b.Active) + len(b.Overdue)
}

package models

const (
	// Reservation statuses. Reserved is the only non-terminal state.
	StatusReserved  = "reserved"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

const (
	// Unit lifecycle statuses. Only active units are bookable.
	UnitStatusActive      = "active"
	UnitStatusMaintenance = "maintenance"
	UnitStatusRetired     = "retired"
)

const (
	// Verification buckets, computed at read time relative to now.
	BucketUpcoming = "upcoming"
	BucketActive   = "active"
	BucketOverdue  = "overdue"
)

const (
	// MaxReservationMinutes caps a single reservation window.
	MaxReservationMinutes = 120

	// DefaultVerificationRefreshSeconds is the bucket recompute interval.
	DefaultVerificationRefreshSeconds = 60

	// DefaultIdempotencyTTL is how long a create result stays replayable, in seconds.
	DefaultIdempotencyTTL = 24 * 60 * 60

	// RateLimitRequests is the number of create requests allowed per window.
	RateLimitRequests = 10

	// RateLimitWindow is the requester rate-limit window in seconds.
	RateLimitWindow = 60
)

// DefaultDurationChoices enumerates the bookable durations in minutes.
var DefaultDurationChoices = []int{30, 60, 90, 120}

// DefaultCampuses partitions unit availability when config has none.
var DefaultCampuses = []string{"Monterrico", "San Miguel"}

// IsTerminalStatus reports whether a reservation status is absorbing.
func IsTerminalStatus(status string) bool {
	return status == StatusCancelled || status == StatusCompleted
}

// IsValidUnitStatus reports whether s is a known unit lifecycle status.
func IsValidUnitStatus(s string) bool {
	switch s {
	case UnitStatusActive, UnitStatusMaintenance, UnitStatusRetired:
		return true
	default:
		return false
	}
}

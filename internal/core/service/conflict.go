package service

import "github.com/swahilipot/room-booking/internal/core/domain"

// FindConflict returns the first active booking in existing whose window
// overlaps candidate, or nil. With existing in a stable order the result is
// deterministic; any overlap present is always found.
func FindConflict(existing []domain.Booking, candidate domain.TimeRange) *domain.Booking {
	for i := range existing {
		b := &existing[i]
		if !b.Status.IsActive() {
			continue
		}
		if b.Range().Overlaps(candidate) {
			return b
		}
	}
	return nil
}

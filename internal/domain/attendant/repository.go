package attendant

import "context"

// AttendantRepository reads the externally owned attendant roster
type AttendantRepository interface {
	// FetchActiveAttendants returns active attendants ordered by name
	FetchActiveAttendants(ctx context.Context) ([]Attendant, error)
}

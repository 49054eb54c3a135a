package attendance

import (
	"testing"

	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupe_FirstSeenWins(t *testing.T) {
	first := record("1", "Ana", "2024-03-01", 30)
	later := record("1", "Bia", "2024-03-02", 99)
	later.ID = "row-later"

	got := Dedupe([]attendance.AttendanceRecord{first, record("2", "Ana", "2024-03-01", 10), later})

	require.Len(t, got, 2)
	assert.Equal(t, "row-1", got[0].ID)
	assert.Equal(t, "Ana", got[0].AttendantName)
	assert.Equal(t, "2", got[1].AttendanceID)
}

func TestDedupe_Idempotent(t *testing.T) {
	records := []attendance.AttendanceRecord{
		record("1", "Ana", "2024-03-01", 30),
		record("1", "Ana", "2024-03-01", 30),
		record("2", "Bia", "2024-03-01", 10),
		record("", "Bia", "2024-03-01", 5),
		record("3", "Ana", "2024-03-02", 15),
		record("2", "Bia", "2024-03-01", 10),
	}

	once := Dedupe(records)
	twice := Dedupe(once)
	assert.Equal(t, once, twice)
	assert.Len(t, once, 4)
}

func TestDedupe_KeepsRowsWithoutID(t *testing.T) {
	records := []attendance.AttendanceRecord{
		record("", "Ana", "2024-03-01", 30),
		record("", "Ana", "2024-03-01", 30),
	}
	got, dropped := dedupe(records)
	assert.Len(t, got, 2)
	assert.Zero(t, dropped)
}

func TestDedupe_Empty(t *testing.T) {
	got := Dedupe(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

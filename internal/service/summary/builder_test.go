package summary

import (
	"testing"

	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/attendance"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/summary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRows(t *testing.T) {
	window, err := WindowFor(summary.PeriodWeekly, fixedNow)
	require.NoError(t, err)

	records := weekRecords()
	malformed := record("5", "Bia", "not-a-date", 15)
	records = append(records, malformed)

	rows := BuildRows(window, records, roster("Caio", "Ana", "Bia"))
	require.Len(t, rows, 3)

	// roster order is kept
	assert.Equal(t, "Caio", rows[0].Attendant)
	assert.Equal(t, "Ana", rows[1].Attendant)
	assert.Equal(t, "Bia", rows[2].Attendant)

	for _, r := range rows {
		assert.Equal(t, summary.PeriodWeekly, r.PeriodType)
		assert.Equal(t, window.Range.Start, r.PeriodStart)
		assert.Equal(t, window.Range.End, r.PeriodEnd)
	}

	ana := rows[1]
	assert.Equal(t, 2, ana.TotalCount)
	assert.Equal(t, 20.0, ana.AverageDurationMinutes)
	assert.InDelta(t, 0.1, ana.EfficiencyIndex, 1e-9)
	assert.Equal(t, 1, ana.FinalizedCount)
	assert.Equal(t, 1, ana.InProgressCount)
	assert.InDelta(t, 50.0, ana.ResolutionRatePercent, 1e-9)

	assert.Equal(t, summary.Row{
		Attendant:   "Caio",
		PeriodType:  summary.PeriodWeekly,
		PeriodStart: window.Range.Start,
		PeriodEnd:   window.Range.End,
	}, rows[0])
}

func TestBuildRows_NoRoster(t *testing.T) {
	window, err := WindowFor(summary.PeriodDaily, fixedNow)
	require.NoError(t, err)

	rows := BuildRows(window, []attendance.AttendanceRecord{
		record("9", "Davi", "2024-03-13", 12),
	}, nil)

	require.Len(t, rows, 1)
	assert.Equal(t, "Davi", rows[0].Attendant)
	assert.Equal(t, 1, rows[0].TotalCount)
}

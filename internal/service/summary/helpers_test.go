package summary

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/attendance"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/attendant"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/summary"
)

// fixedNow is Wednesday 2024-03-13 in UTC
var fixedNow = time.Date(2024, time.March, 13, 15, 30, 0, 0, time.UTC)

func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string     { return &s }

func record(id, name, date string, duration float64) attendance.AttendanceRecord {
	return attendance.AttendanceRecord{
		ID:              "row-" + id,
		AttendanceID:    id,
		AttendantName:   name,
		Date:            date,
		DurationMinutes: floatPtr(duration),
	}
}

func roster(names ...string) []attendant.Attendant {
	out := make([]attendant.Attendant, 0, len(names))
	for _, n := range names {
		out = append(out, attendant.Attendant{ID: "id-" + n, Name: n, Active: true})
	}
	return out
}

type fakeRecordRepo struct {
	records []attendance.AttendanceRecord
	err     error
}

func (f *fakeRecordRepo) FetchAttendanceRecords(_ context.Context, _ attendance.FilterSpec) ([]attendance.AttendanceRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func (f *fakeRecordRepo) FetchRecent(_ context.Context, _ int) ([]attendance.AttendanceRecord, error) {
	return nil, errors.New("not used")
}

type fakeRosterRepo struct {
	roster []attendant.Attendant
	err    error
}

func (f *fakeRosterRepo) FetchActiveAttendants(_ context.Context) ([]attendant.Attendant, error) {
	return f.roster, f.err
}

// memoryStore replaces a window's rows atomically, like the postgres store
type memoryStore struct {
	mu       sync.Mutex
	rows     map[string][]summary.Row
	writes   int
	failOn   summary.PeriodType
	writeErr error

	// inFlight tracks concurrent writes per window key
	inFlight    map[string]int
	maxInFlight int
	delay       time.Duration
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		rows:     make(map[string][]summary.Row),
		inFlight: make(map[string]int),
	}
}

func (m *memoryStore) WriteRows(_ context.Context, window summary.Window, _ string, rows []summary.Row) error {
	key := window.Key()

	m.mu.Lock()
	m.inFlight[key]++
	if m.inFlight[key] > m.maxInFlight {
		m.maxInFlight = m.inFlight[key]
	}
	m.mu.Unlock()

	if m.delay > 0 {
		time.Sleep(m.delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight[key]--
	m.writes++

	if m.writeErr != nil && window.PeriodType == m.failOn {
		return m.writeErr
	}
	m.rows[key] = append([]summary.Row(nil), rows...)
	return nil
}

func (m *memoryStore) ReadRows(_ context.Context, periodType summary.PeriodType, dateRange attendance.DateRange, attendantFilter string) ([]summary.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []summary.Row
	for _, rows := range m.rows {
		for _, r := range rows {
			if r.PeriodType != periodType {
				continue
			}
			if dateRange.IsBounded() && (r.PeriodStart.After(dateRange.End) || r.PeriodEnd.Before(dateRange.Start)) {
				continue
			}
			if attendantFilter != "" && r.Attendant != attendantFilter {
				continue
			}
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Attendant < out[j].Attendant
	})
	return out, nil
}

func (m *memoryStore) snapshot(key string) []summary.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]summary.Row(nil), m.rows[key]...)
}

package attendance

import (
	"sort"

	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/attendance"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/attendant"
)

// DefaultTopN is the size of the spotlight slice when none is requested
const DefaultTopN = 3

// RankAttendants orders metrics by activity, then efficiency index descending.
// Roster members missing from metrics are added with zero activity. Ties keep
// roster order, then input order for names outside the roster. Top is a
// prefix of All, so both views come from the same sort.
func RankAttendants(metrics []attendance.AttendantMetric, roster []attendant.Attendant, topN int) attendance.Ranking {
	if topN <= 0 {
		topN = DefaultTopN
	}

	byName := make(map[string]attendance.AttendantMetric, len(metrics))
	for _, m := range metrics {
		if _, dup := byName[m.AttendantName]; !dup {
			byName[m.AttendantName] = m
		}
	}

	ordered := make([]attendance.AttendantMetric, 0, len(metrics)+len(roster))
	placed := make(map[string]struct{}, len(metrics)+len(roster))
	for _, a := range roster {
		if _, ok := placed[a.Name]; ok {
			continue
		}
		m, ok := byName[a.Name]
		if !ok {
			m = attendance.AttendantMetric{AttendantName: a.Name}
		}
		if m.PhotoURL == nil {
			m.PhotoURL = a.PhotoURL
		}
		ordered = append(ordered, m)
		placed[a.Name] = struct{}{}
	}
	for _, m := range metrics {
		if _, ok := placed[m.AttendantName]; ok {
			continue
		}
		ordered = append(ordered, m)
		placed[m.AttendantName] = struct{}{}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.IsActive() != b.IsActive() {
			return a.IsActive()
		}
		return a.EfficiencyIndex > b.EfficiencyIndex
	})

	all := make([]attendance.RankedAttendant, len(ordered))
	for i, m := range ordered {
		all[i] = attendance.RankedAttendant{Position: i + 1, AttendantMetric: m}
	}
	if topN > len(all) {
		topN = len(all)
	}
	return attendance.Ranking{All: all, Top: all[:topN]}
}

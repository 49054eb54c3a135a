package attendant

// Attendant is a member of the roster. Metrics resolve against it by exact name.
type Attendant struct {
	ID       string
	Name     string
	Active   bool
	PhotoURL *string
}

// Names returns the roster names in roster order
func Names(roster []Attendant) []string {
	names := make([]string, 0, len(roster))
	for _, a := range roster {
		names = append(names, a.Name)
	}
	return names
}

package model

// Worker is the dispatch-relevant subset of a technician profile. The
// approval flag comes from an external admin workflow; location and
// availability are maintained by the worker and read-only to the matcher
// and coordinator.
type Worker struct {
	ID          string    `json:"id"`
	Skills      []string  `json:"skills"`
	Location    *GeoPoint `json:"location,omitempty"`
	IsAvailable bool      `json:"is_available"`
	Approved    bool      `json:"approved"`
}

func (w Worker) HasSkill(issueType string) bool {
	for _, s := range w.Skills {
		if s == issueType {
			return true
		}
	}
	return false
}

// Eligible reports whether the worker may appear on the matching path at
// all: approved, online, with a known location and at least one skill.
func (w Worker) Eligible() bool {
	return w.Approved && w.IsAvailable && w.Location != nil && len(w.Skills) > 0
}

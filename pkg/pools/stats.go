package pools

import "fmt"

// Stats is a snapshot of a pool's lifetime counters and current shape.
type Stats struct {
	Created    uint64 `json:"created"`
	Destroyed  uint64 `json:"destroyed"`
	Acquired   uint64 `json:"acquired"`
	Released   uint64 `json:"released"`
	Growths    uint64 `json:"growths"`
	Reductions uint64 `json:"reductions"`

	// Available is the cursor: items ready for Acquire.
	Available int `json:"available"`
	// Reservoir is the physical slot count, stale slots included.
	Reservoir int `json:"reservoir"`
}

// CheckedOut is the number of acquisitions not yet matched by a release.
// It is only meaningful while callers honour the release contract.
func (s Stats) CheckedOut() int64 {
	return int64(s.Acquired) - int64(s.Released)
}

// String returns a human-readable summary.
func (s Stats) String() string {
	return fmt.Sprintf("Pool Stats: %d available, %d slots, %d created, %d destroyed, %d acquired, %d released, %d growths, %d reductions",
		s.Available, s.Reservoir, s.Created, s.Destroyed, s.Acquired, s.Released, s.Growths, s.Reductions)
}

package state

import (
	"time"

	"github.com/memlab/wilt/internal/types"
	"gopkg.in/guregu/null.v3"
)

// RecordView is a read-only copy of one record. It shares no memory with the Registry.
type RecordView struct {
	Identity     types.Identity
	Name         string
	State        Lifecycle
	Collapsed    bool
	Order        uint64
	PeakResident uint64
	// WiltedAt is invalid while the record is alive.
	WiltedAt null.Time
	History  []types.Sample
}

func (rv *RecordView) Wilted() bool {
	return rv.State == Wilted
}

// Lifetime is how long the process has been running, frozen at its death once wilted.
func (rv *RecordView) Lifetime(now time.Time) time.Duration {
	end := now
	if rv.WiltedAt.Valid {
		end = rv.WiltedAt.Time
	}

	lifetime := end.Sub(rv.Identity.Started())
	if lifetime < 0 {
		return 0
	}
	return lifetime
}

func (rv *RecordView) Latest() (types.Sample, bool) {
	if len(rv.History) == 0 {
		return types.Sample{}, false
	}
	return rv.History[len(rv.History)-1], true
}

// Snapshot is the render-ready view of the Registry. Records are ordered by discovery.
type Snapshot struct {
	TakenAt time.Time
	Query   string
	Records []RecordView
	Quit    bool
}

func (s *Snapshot) Alive() int {
	alive := 0
	for i := range s.Records {
		if s.Records[i].State == Alive {
			alive++
		}
	}
	return alive
}

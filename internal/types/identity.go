package types

import (
	"fmt"
	"time"
)

// Identity is one process instance: the pid alone is not enough since the OS recycles pids.
type Identity struct {
	Pid Pid
	// StartTime is the process create time in milliseconds since the epoch.
	StartTime int64
}

func (i Identity) Started() time.Time {
	return TimeFromMillisecondTimestamp(i.StartTime)
}

func (i Identity) String() string {
	return fmt.Sprintf("%d@%d", i.Pid, i.StartTime)
}

// Match is a process whose name contains the watched query.
type Match struct {
	Identity Identity
	Name     string
}

package types

import "time"

// Counters are the raw cumulative readings for one process at one instant.
type Counters struct {
	At            time.Time
	ResidentBytes uint64
	CPUSeconds    float64
	ReadBytes     uint64
	WriteBytes    uint64
	// IOAvailable is false when the OS refused access to the process' I/O accounting.
	IOAvailable bool
}

// Sample is one point of a record's history. Byte counts are deltas over Interval.
type Sample struct {
	Timestamp     time.Time
	Interval      time.Duration
	ResidentBytes uint64
	CPUPercent    float64
	ReadBytes     uint64
	WriteBytes    uint64
}

func (s Sample) ReadRate() float64 {
	return perSecond(s.ReadBytes, s.Interval)
}

func (s Sample) WriteRate() float64 {
	return perSecond(s.WriteBytes, s.Interval)
}

func perSecond(bytes uint64, interval time.Duration) float64 {
	if interval <= 0 {
		return 0
	}
	return float64(bytes) / interval.Seconds()
}

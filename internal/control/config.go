package control

import (
	"time"

	"github.com/pkg/errors"
)

const (
	minTickInterval    = 100 * time.Millisecond
	minHistoryCapacity = 2
	maxHistoryCapacity = 100000
)

type PlaneConfig struct {
	Query           string
	TickInterval    time.Duration
	ReadTimeout     time.Duration
	HistoryCapacity int
}

func (pc *PlaneConfig) Valid() (bool, error) {
	if pc.Query == "" {
		return false, errors.New("empty process name query")
	}

	if pc.TickInterval <= 0 {
		return false, errors.New("uninitialized tick interval")
	} else if pc.TickInterval < minTickInterval {
		return false, errors.Errorf("below minimum allowed tick interval (min: '%s')", minTickInterval.String())
	}

	if pc.ReadTimeout <= 0 {
		return false, errors.New("uninitialized read timeout")
	} else if pc.ReadTimeout >= pc.TickInterval {
		return false, errors.Errorf("read timeout '%s' must be shorter than the tick interval '%s'",
			pc.ReadTimeout.String(), pc.TickInterval.String())
	}

	if pc.HistoryCapacity < minHistoryCapacity || pc.HistoryCapacity > maxHistoryCapacity {
		return false, errors.Errorf("history capacity '%d' out of allowed range (min: '%d', max: '%d')",
			pc.HistoryCapacity, minHistoryCapacity, maxHistoryCapacity)
	}

	return true, nil
}

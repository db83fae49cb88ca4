package control

import "time"

// Ticker is the timer source of the loop. Tests replace it with a channel they drive.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	*time.Ticker
}

func newTimeTicker(interval time.Duration) Ticker {
	return timeTicker{Ticker: time.NewTicker(interval)}
}

func (tt timeTicker) C() <-chan time.Time {
	return tt.Ticker.C
}

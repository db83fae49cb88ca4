package state

import "github.com/memlab/wilt/internal/types"

// History is a fixed-capacity ring of samples. Pushing into a full history overwrites the oldest sample.
type History struct {
	samples []types.Sample
	start   int
	size    int
}

func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{samples: make([]types.Sample, capacity)}
}

func (h *History) Push(sample types.Sample) {
	capacity := len(h.samples)
	if h.size < capacity {
		h.samples[(h.start+h.size)%capacity] = sample
		h.size++
		return
	}

	h.samples[h.start] = sample
	h.start = (h.start + 1) % capacity
}

// Snapshot copies the retained samples, oldest first.
func (h *History) Snapshot() []types.Sample {
	snapshot := make([]types.Sample, h.size)
	for i := 0; i < h.size; i++ {
		snapshot[i] = h.samples[(h.start+i)%len(h.samples)]
	}
	return snapshot
}

func (h *History) Last() (types.Sample, bool) {
	if h.size == 0 {
		return types.Sample{}, false
	}
	return h.samples[(h.start+h.size-1)%len(h.samples)], true
}

func (h *History) Len() int {
	return h.size
}

func (h *History) Cap() int {
	return len(h.samples)
}

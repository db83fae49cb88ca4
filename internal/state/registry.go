package state

import (
	"context"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/memlab/wilt/internal/processes"
	"github.com/memlab/wilt/internal/types"
	"gopkg.in/guregu/null.v3"
	"go.uber.org/zap"
)

// Sampler reads one process instance. previous is nil on the first read of an identity.
type Sampler interface {
	Sample(ctx context.Context, identity types.Identity, previous *types.Counters) (types.Sample, types.Counters, error)
}

type record struct {
	identity     types.Identity
	name         string
	state        Lifecycle
	collapsed    bool
	order        uint64
	peakResident uint64
	wiltedAt     null.Time
	history      *History
	previous     *types.Counters
}

// Registry owns every tracked record. It is not safe for concurrent use: a single loop drives it.
type Registry struct {
	logger          *zap.Logger
	capacity        int
	records         map[types.Identity]*record
	ordered         []*record
	nextOrder       uint64
	collapseDefault bool
}

func NewRegistry(rootLogger *zap.Logger, capacity int) *Registry {
	return &Registry{
		logger:   rootLogger.Named("registry"),
		capacity: capacity,
		records:  make(map[types.Identity]*record, 0),
	}
}

// Discover inserts an Alive record for every match not tracked yet and returns how many were added.
func (r *Registry) Discover(matches []types.Match) int {
	discovered := 0

	for _, match := range matches {
		if _, tracked := r.records[match.Identity]; tracked {
			continue
		}

		rec := &record{
			identity:  match.Identity,
			name:      match.Name,
			state:     Alive,
			collapsed: r.collapseDefault,
			order:     r.nextOrder,
			history:   NewHistory(r.capacity),
		}
		r.nextOrder++

		r.records[match.Identity] = rec
		r.ordered = append(r.ordered, rec)
		discovered++

		r.logger.Info("Discovered process", zap.Int32("Pid", match.Identity.Pid.Int32()),
			zap.String("Name", match.Name), zap.Uint64("Order", rec.order))
	}

	return discovered
}

// SampleAlive samples every Alive record in discovery order. A Gone failure wilts the record,
// any other failure leaves it untouched until the next tick.
func (r *Registry) SampleAlive(ctx context.Context, sampler Sampler, now time.Time) {
	var errs error

	for _, rec := range r.ordered {
		if rec.state != Alive {
			continue
		}

		sample, counters, err := sampler.Sample(ctx, rec.identity, rec.previous)
		if err != nil {
			if processes.IsGone(err) {
				r.wilt(rec, now)
				continue
			}
			errs = multierror.Append(errs, err)
			continue
		}

		rec.history.Push(sample)
		rec.previous = &counters
		if sample.ResidentBytes > rec.peakResident {
			rec.peakResident = sample.ResidentBytes
		}
	}

	if errs != nil {
		r.logger.Debug("Skipped samples this tick", zap.Error(errs))
	}
}

// DetectWilted wilts every Alive record whose identity is missing from the latest matches.
func (r *Registry) DetectWilted(matches []types.Match, now time.Time) {
	present := make(map[types.Identity]struct{}, len(matches))
	for _, match := range matches {
		present[match.Identity] = struct{}{}
	}

	for _, rec := range r.ordered {
		if rec.state != Alive {
			continue
		}
		if _, found := present[rec.identity]; !found {
			r.wilt(rec, now)
		}
	}
}

func (r *Registry) wilt(rec *record, now time.Time) {
	rec.state = Wilted
	rec.wiltedAt = null.TimeFrom(now)
	rec.previous = nil

	r.logger.Info("Process wilted", zap.Int32("Pid", rec.identity.Pid.Int32()),
		zap.String("Name", rec.name), zap.Int("Samples", rec.history.Len()))
}

// Reset drops every record and restarts discovery order at zero.
func (r *Registry) Reset() {
	r.logger.Info("Reset", zap.Int("Records", len(r.ordered)))

	r.records = make(map[types.Identity]*record, 0)
	r.ordered = nil
	r.nextOrder = 0
}

func (r *Registry) CollapseAll() {
	r.setCollapsed(true)
}

func (r *Registry) ExpandAll() {
	r.setCollapsed(false)
}

// setCollapsed updates every record and the default for records discovered later.
func (r *Registry) setCollapsed(collapsed bool) {
	r.collapseDefault = collapsed
	for _, rec := range r.ordered {
		rec.collapsed = collapsed
	}

	r.logger.Debug("Set collapsed", zap.Bool("Collapsed", collapsed), zap.Int("Records", len(r.ordered)))
}

func (r *Registry) CollapseDefault() bool {
	return r.collapseDefault
}

func (r *Registry) Len() int {
	return len(r.ordered)
}

// Snapshot deep-copies the registry, ordered by discovery.
func (r *Registry) Snapshot(takenAt time.Time) Snapshot {
	records := make([]RecordView, 0, len(r.ordered))
	for _, rec := range r.ordered {
		records = append(records, RecordView{
			Identity:     rec.identity,
			Name:         rec.name,
			State:        rec.state,
			Collapsed:    rec.collapsed,
			Order:        rec.order,
			PeakResident: rec.peakResident,
			WiltedAt:     rec.wiltedAt,
			History:      rec.history.Snapshot(),
		})
	}

	return Snapshot{
		TakenAt: takenAt,
		Records: records,
	}
}

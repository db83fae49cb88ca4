package processes

import (
	"context"
	"os"
	"time"

	"github.com/memlab/wilt/internal/types"
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/cpu"
	psUtil "github.com/shirou/gopsutil/process"
	"go.uber.org/zap"
)

const DefaultReadTimeout = 250 * time.Millisecond

type counterSource interface {
	CreateTimeWithContext(ctx context.Context) (int64, error)
	MemoryInfoWithContext(ctx context.Context) (*psUtil.MemoryInfoStat, error)
	TimesWithContext(ctx context.Context) (*cpu.TimesStat, error)
	IOCountersWithContext(ctx context.Context) (*psUtil.IOCountersStat, error)
}

type pidChecker func(ctx context.Context, pid int32) (bool, error)

type Sampler struct {
	logger      *zap.Logger
	readTimeout time.Duration
	open        func(pid types.Pid) counterSource
	exists      pidChecker
	now         func() time.Time
}

func NewSampler(rootLogger *zap.Logger, readTimeout time.Duration) *Sampler {
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}

	return &Sampler{
		logger:      rootLogger.Named("sampler"),
		readTimeout: readTimeout,
		open: func(pid types.Pid) counterSource {
			return &psUtil.Process{Pid: pid.Int32()}
		},
		exists: psUtil.PidExistsWithContext,
		now:    time.Now,
	}
}

// Sample reads the current counters of identity and derives a Sample from previous.
// previous is nil on the first tick of an identity. Failures are *SampleFailure values.
func (s *Sampler) Sample(ctx context.Context, identity types.Identity,
	previous *types.Counters) (types.Sample, types.Counters, error) {
	counters, err := s.readBounded(ctx, identity)
	if err != nil {
		return types.Sample{}, types.Counters{}, err
	}
	return Derive(previous, counters), counters, nil
}

type readResult struct {
	counters types.Counters
	err      error
}

// readBounded gives up after the read timeout so a single unresponsive process cannot stall a tick.
func (s *Sampler) readBounded(ctx context.Context, identity types.Identity) (types.Counters, error) {
	ctx, cancel := context.WithTimeout(ctx, s.readTimeout)
	defer cancel()

	results := make(chan readResult, 1)
	go func() {
		counters, err := s.read(ctx, identity)
		results <- readResult{counters: counters, err: err}
	}()

	select {
	case <-ctx.Done():
		s.logger.Debug("Read did not finish in time", zap.Stringer("Identity", identity),
			zap.Duration("Timeout", s.readTimeout))
		return types.Counters{}, transient(identity, errors.WithMessage(ctx.Err(), "read counters"))
	case result := <-results:
		return result.counters, result.err
	}
}

func (s *Sampler) read(ctx context.Context, identity types.Identity) (types.Counters, error) {
	exists, err := s.exists(ctx, identity.Pid.Int32())
	if err != nil {
		return types.Counters{}, transient(identity, errors.WithMessage(err, "check pid"))
	}
	if !exists {
		return types.Counters{}, gone(identity, psUtil.ErrorProcessNotRunning)
	}

	source := s.open(identity.Pid)

	createTime, err := source.CreateTimeWithContext(ctx)
	if err != nil {
		return types.Counters{}, s.classify(ctx, identity, errors.WithMessage(err, "get create time"))
	}
	if createTime != identity.StartTime {
		return types.Counters{}, gone(identity, errPidReused)
	}

	memoryInfo, err := source.MemoryInfoWithContext(ctx)
	if err != nil {
		return types.Counters{}, s.classify(ctx, identity, errors.WithMessage(err, "get memory info"))
	}

	times, err := source.TimesWithContext(ctx)
	if err != nil {
		return types.Counters{}, s.classify(ctx, identity, errors.WithMessage(err, "get cpu times"))
	}

	counters := types.Counters{
		At:            s.now(),
		ResidentBytes: memoryInfo.RSS,
		CPUSeconds:    times.User + times.System,
	}

	ioCounters, err := source.IOCountersWithContext(ctx)
	switch {
	case err == nil:
		counters.ReadBytes = ioCounters.ReadBytes
		counters.WriteBytes = ioCounters.WriteBytes
		counters.IOAvailable = true
	case os.IsPermission(errors.Cause(err)):
		// I/O accounting of other users' processes is root-only; keep memory and CPU.
	default:
		return types.Counters{}, s.classify(ctx, identity, errors.WithMessage(err, "get io counters"))
	}

	return counters, nil
}

// classify decides whether a failed read means the process is gone.
func (s *Sampler) classify(ctx context.Context, identity types.Identity, err error) error {
	if vanished(err) {
		return gone(identity, err)
	}

	exists, existsErr := s.exists(ctx, identity.Pid.Int32())
	if existsErr == nil && !exists {
		return gone(identity, err)
	}
	return transient(identity, err)
}

// Derive computes the per-interval deltas between two readings of the same identity.
func Derive(previous *types.Counters, current types.Counters) types.Sample {
	sample := types.Sample{
		Timestamp:     current.At,
		ResidentBytes: current.ResidentBytes,
	}

	if previous == nil {
		return sample
	}

	elapsed := current.At.Sub(previous.At)
	if elapsed <= 0 {
		return sample
	}
	sample.Interval = elapsed

	if cpuSeconds := current.CPUSeconds - previous.CPUSeconds; cpuSeconds > 0 {
		sample.CPUPercent = 100 * cpuSeconds / elapsed.Seconds()
	}

	if current.IOAvailable && previous.IOAvailable {
		sample.ReadBytes = counterDelta(previous.ReadBytes, current.ReadBytes)
		sample.WriteBytes = counterDelta(previous.WriteBytes, current.WriteBytes)
	}

	return sample
}

func counterDelta(previous, current uint64) uint64 {
	if current < previous {
		return 0
	}
	return current - previous
}

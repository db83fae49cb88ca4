package processes

import (
	"context"
	stdLibErrors "errors"
	"os"
	"testing"
	"time"

	"github.com/memlab/wilt/internal/types"
	"github.com/shirou/gopsutil/cpu"
	psUtil "github.com/shirou/gopsutil/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSource struct {
	createTime int64
	rss        uint64
	user       float64
	system     float64
	readBytes  uint64
	writeBytes uint64
	memErr     error
	ioErr      error
	delay      time.Duration
}

func (f *fakeSource) CreateTimeWithContext(context.Context) (int64, error) {
	time.Sleep(f.delay)
	return f.createTime, nil
}

func (f *fakeSource) MemoryInfoWithContext(context.Context) (*psUtil.MemoryInfoStat, error) {
	if f.memErr != nil {
		return nil, f.memErr
	}
	return &psUtil.MemoryInfoStat{RSS: f.rss}, nil
}

func (f *fakeSource) TimesWithContext(context.Context) (*cpu.TimesStat, error) {
	return &cpu.TimesStat{User: f.user, System: f.system}, nil
}

func (f *fakeSource) IOCountersWithContext(context.Context) (*psUtil.IOCountersStat, error) {
	if f.ioErr != nil {
		return nil, f.ioErr
	}
	return &psUtil.IOCountersStat{ReadBytes: f.readBytes, WriteBytes: f.writeBytes}, nil
}

var sampleTime = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newFakeSampler(source *fakeSource, alive *bool) *Sampler {
	s := NewSampler(zap.NewNop(), time.Second)
	s.open = func(types.Pid) counterSource {
		return source
	}
	s.exists = func(context.Context, int32) (bool, error) {
		return *alive, nil
	}
	s.now = func() time.Time {
		return sampleTime
	}
	return s
}

func TestDeriveFirstSampleHasNoDeltas(t *testing.T) {
	sample := Derive(nil, types.Counters{At: sampleTime, ResidentBytes: 4096, CPUSeconds: 12, ReadBytes: 100, IOAvailable: true})

	assert.Equal(t, types.Sample{Timestamp: sampleTime, ResidentBytes: 4096}, sample)
	assert.Zero(t, sample.ReadRate())
}

func TestDeriveDeltas(t *testing.T) {
	previous := types.Counters{At: sampleTime, CPUSeconds: 1.0, ReadBytes: 1000, WriteBytes: 500, IOAvailable: true}
	current := types.Counters{
		At:            sampleTime.Add(2 * time.Second),
		ResidentBytes: 8192,
		CPUSeconds:    2.0,
		ReadBytes:     5000,
		WriteBytes:    500,
		IOAvailable:   true,
	}

	sample := Derive(&previous, current)
	assert.Equal(t, 2*time.Second, sample.Interval)
	assert.InDelta(t, 50.0, sample.CPUPercent, 1e-9)
	assert.Equal(t, uint64(4000), sample.ReadBytes)
	assert.Equal(t, uint64(0), sample.WriteBytes)
	assert.InDelta(t, 2000.0, sample.ReadRate(), 1e-9)
	assert.Equal(t, uint64(8192), sample.ResidentBytes)
}

func TestDeriveClampsRegressions(t *testing.T) {
	previous := types.Counters{At: sampleTime, CPUSeconds: 5, ReadBytes: 9000, IOAvailable: true}
	current := types.Counters{At: sampleTime.Add(time.Second), CPUSeconds: 4, ReadBytes: 10, IOAvailable: true}

	sample := Derive(&previous, current)
	assert.Zero(t, sample.CPUPercent)
	assert.Zero(t, sample.ReadBytes)
}

func TestDeriveWithoutIOAccounting(t *testing.T) {
	previous := types.Counters{At: sampleTime, ReadBytes: 0, IOAvailable: false}
	current := types.Counters{At: sampleTime.Add(time.Second), ReadBytes: 9000, IOAvailable: true}

	assert.Zero(t, Derive(&previous, current).ReadBytes)
}

func TestSampleReadsCounters(t *testing.T) {
	alive := true
	source := &fakeSource{createTime: 1000, rss: 2048, user: 1.5, system: 0.5, readBytes: 10, writeBytes: 20}
	s := newFakeSampler(source, &alive)

	sample, counters, err := s.Sample(context.Background(), types.Identity{Pid: 42, StartTime: 1000}, nil)
	require.NoError(t, err)
	assert.Equal(t, types.Counters{
		At:            sampleTime,
		ResidentBytes: 2048,
		CPUSeconds:    2.0,
		ReadBytes:     10,
		WriteBytes:    20,
		IOAvailable:   true,
	}, counters)
	assert.Equal(t, uint64(2048), sample.ResidentBytes)
	assert.Zero(t, sample.CPUPercent)
}

func TestSampleGoneWhenPidMissing(t *testing.T) {
	alive := false
	s := newFakeSampler(&fakeSource{createTime: 1000}, &alive)

	_, _, err := s.Sample(context.Background(), types.Identity{Pid: 42, StartTime: 1000}, nil)
	require.Error(t, err)
	assert.True(t, IsGone(err))
	assert.False(t, IsTransient(err))
}

func TestSampleGoneWhenPidReused(t *testing.T) {
	alive := true
	s := newFakeSampler(&fakeSource{createTime: 2000}, &alive)

	_, _, err := s.Sample(context.Background(), types.Identity{Pid: 42, StartTime: 1000}, nil)
	require.Error(t, err)
	assert.True(t, IsGone(err))
	assert.True(t, stdLibErrors.Is(err, errPidReused))
}

func TestSampleTransientFailure(t *testing.T) {
	alive := true
	s := newFakeSampler(&fakeSource{createTime: 1000, memErr: stdLibErrors.New("resource temporarily unavailable")}, &alive)

	_, _, err := s.Sample(context.Background(), types.Identity{Pid: 42, StartTime: 1000}, nil)
	require.Error(t, err)
	assert.True(t, IsTransient(err))
	assert.Contains(t, err.Error(), "get memory info")
}

func TestSampleFailureAfterExitIsGone(t *testing.T) {
	alive := true
	source := &fakeSource{createTime: 1000, memErr: os.ErrNotExist}
	s := newFakeSampler(source, &alive)

	_, _, err := s.Sample(context.Background(), types.Identity{Pid: 42, StartTime: 1000}, nil)
	assert.True(t, IsGone(err))
}

func TestSampleWithoutIOPermission(t *testing.T) {
	alive := true
	source := &fakeSource{createTime: 1000, rss: 1, ioErr: &os.PathError{Op: "open", Path: "/proc/42/io", Err: os.ErrPermission}}
	s := newFakeSampler(source, &alive)

	_, counters, err := s.Sample(context.Background(), types.Identity{Pid: 42, StartTime: 1000}, nil)
	require.NoError(t, err)
	assert.False(t, counters.IOAvailable)
	assert.Equal(t, uint64(1), counters.ResidentBytes)
}

func TestSampleIsBoundedInTime(t *testing.T) {
	alive := true
	s := newFakeSampler(&fakeSource{createTime: 1000, delay: 200 * time.Millisecond}, &alive)
	s.readTimeout = 10 * time.Millisecond

	started := time.Now()
	_, _, err := s.Sample(context.Background(), types.Identity{Pid: 42, StartTime: 1000}, nil)
	require.Error(t, err)
	assert.True(t, IsTransient(err))
	assert.Less(t, time.Since(started), 150*time.Millisecond)
}

func TestSampleLiveProcess(t *testing.T) {
	cmd := startSleep(t)
	pid := types.Pid(cmd.Process.Pid)

	live, err := psUtil.NewProcess(pid.Int32())
	require.NoError(t, err)
	createTime, err := live.CreateTime()
	require.NoError(t, err)
	identity := types.Identity{Pid: pid, StartTime: createTime}

	s := NewSampler(zap.NewNop(), time.Second)
	_, counters, err := s.Sample(context.Background(), identity, nil)
	require.NoError(t, err)
	assert.NotZero(t, counters.ResidentBytes)

	_, _, err = s.Sample(context.Background(), types.Identity{Pid: pid, StartTime: createTime + 5000}, nil)
	assert.True(t, IsGone(err))

	require.NoError(t, cmd.Process.Kill())
	_ = cmd.Wait()

	_, _, err = s.Sample(context.Background(), identity, nil)
	assert.True(t, IsGone(err))
}

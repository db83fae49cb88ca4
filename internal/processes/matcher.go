package processes

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	wiltErrors "github.com/memlab/wilt/internal/errors"
	"github.com/memlab/wilt/internal/types"
	"github.com/pkg/errors"
	psUtil "github.com/shirou/gopsutil/process"
	"go.uber.org/zap"
)

const statusZombie = "Z"

type processHandle interface {
	ID() types.Pid
	NameWithContext(ctx context.Context) (string, error)
	CreateTimeWithContext(ctx context.Context) (int64, error)
	StatusWithContext(ctx context.Context) (string, error)
}

type processLister func(ctx context.Context) ([]processHandle, error)

type liveProcess struct {
	*psUtil.Process
}

func (lp liveProcess) ID() types.Pid {
	return types.Pid(lp.Pid)
}

func listLiveProcesses(ctx context.Context) ([]processHandle, error) {
	liveProcesses, err := psUtil.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	handles := make([]processHandle, 0, len(liveProcesses))
	for _, liveProcess := range liveProcesses {
		handles = append(handles, liveProcessOf(liveProcess))
	}
	return handles, nil
}

func liveProcessOf(p *psUtil.Process) processHandle {
	return liveProcess{Process: p}
}

type Matcher struct {
	logger *zap.Logger
	list   processLister
}

func NewMatcher(rootLogger *zap.Logger) *Matcher {
	return &Matcher{
		logger: rootLogger.Named("matcher"),
		list:   listLiveProcesses,
	}
}

// Find scans the process table once and returns every process whose name contains query.
// Matches are ordered by pid. Only a failure to enumerate the table is returned as an error.
func (m *Matcher) Find(ctx context.Context, query string) ([]types.Match, error) {
	handles, err := m.list(ctx)
	if err != nil {
		return nil, wiltErrors.WrappedErrEnumerateProcesses(err)
	}

	var (
		matches []types.Match
		errs    error
	)

	for _, handle := range handles {
		pid := handle.ID()

		name, err := handle.NameWithContext(ctx)
		if err != nil {
			if !vanished(err) {
				errs = multierror.Append(errs, errors.WithMessagef(err, "get name for pid '%d'", pid))
			}
			continue
		}

		if !strings.Contains(name, query) {
			continue
		}

		createTime, err := handle.CreateTimeWithContext(ctx)
		if err != nil {
			if !vanished(err) {
				errs = multierror.Append(errs, errors.WithMessagef(err, "get create time for pid '%d'", pid))
			}
			continue
		}

		// A zombie has exited already; it only waits for its parent to reap it.
		if status, err := handle.StatusWithContext(ctx); err == nil && status == statusZombie {
			continue
		}

		matches = append(matches, types.Match{
			Identity: types.Identity{Pid: pid, StartTime: createTime},
			Name:     name,
		})
	}

	if errs != nil {
		m.logger.Debug("Skipped unreadable processes", zap.String("Query", query), zap.Error(errs))
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Identity.Pid != matches[j].Identity.Pid {
			return matches[i].Identity.Pid < matches[j].Identity.Pid
		}
		return matches[i].Identity.StartTime < matches[j].Identity.StartTime
	})

	return matches, nil
}

func vanished(err error) bool {
	cause := errors.Cause(err)
	return cause == psUtil.ErrorProcessNotRunning || os.IsNotExist(cause)
}

package host

import (
	"context"
	"time"

	"github.com/denisbrodbeck/machineid"
	"github.com/memlab/wilt/internal/types"
	"github.com/pkg/errors"
	psHost "github.com/shirou/gopsutil/host"
	"go.uber.org/zap"
)

const appID = "wilt"

// Info describes the machine whose processes are watched.
type Info struct {
	Hostname        string
	Platform        string
	PlatformVersion string
	KernelVersion   string
	BootTime        time.Time
	MachineID       string
}

func Describe(ctx context.Context) (*Info, error) {
	hostInfo, err := psHost.InfoWithContext(ctx)
	if err != nil {
		return nil, errors.WithMessage(err, "get host info")
	}

	return &Info{
		Hostname:        hostInfo.Hostname,
		Platform:        hostInfo.Platform,
		PlatformVersion: hostInfo.PlatformVersion,
		KernelVersion:   hostInfo.KernelVersion,
		BootTime:        types.TimeFromTimestamp(int64(hostInfo.BootTime)),
	}, nil
}

// MachineID is hashed with the application id so the raw machine id never reaches the logs.
func MachineID() (string, error) {
	machineID, err := machineid.ProtectedID(appID)
	if err != nil {
		return "", errors.WithMessage(err, "get machine id")
	}
	return machineID, nil
}

func (i *Info) Fields() []zap.Field {
	return []zap.Field{
		zap.String("Hostname", i.Hostname),
		zap.String("Platform", i.Platform),
		zap.String("PlatformVersion", i.PlatformVersion),
		zap.String("KernelVersion", i.KernelVersion),
		zap.Time("BootTime", i.BootTime),
		zap.String("MachineID", i.MachineID),
	}
}

package main

import (
	"context"
	stdLibErrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-multierror"
	"github.com/jessevdk/go-flags"
	"github.com/memlab/wilt/internal/control"
	wiltErrors "github.com/memlab/wilt/internal/errors"
	"github.com/memlab/wilt/internal/host"
	"github.com/memlab/wilt/internal/logging"
	"github.com/memlab/wilt/internal/processes"
	"github.com/memlab/wilt/internal/state"
	"github.com/memlab/wilt/internal/ui"
	"go.uber.org/zap"
)

var version = "dev"

var options struct {
	Interval    time.Duration `short:"i" long:"interval" env:"WILT_INTERVAL" description:"Sampling interval" default:"1s"`
	History     int           `short:"n" long:"history" env:"WILT_HISTORY" description:"Samples kept per process" default:"120"`
	ReadTimeout time.Duration `long:"read-timeout" env:"WILT_READ_TIMEOUT" description:"Time limit for reading one process" default:"250ms"`
	LogFile     string        `short:"l" long:"log-file" env:"WILT_LOG_FILE" description:"Write logs to this file"`
	Debug       bool          `short:"d" long:"debug" description:"Debug mode"`
	Version     bool          `short:"V" long:"version" description:"Print version and exit"`

	Args struct {
		Name string `positional-arg-name:"name" description:"Watch processes whose name contains this"`
	} `positional-args:"yes"`
}

const (
	exitCodeOK  = 0
	exitCodeErr = -1
)

func main() {
	os.Exit(run())
}

func run() int {
	parser := flags.NewParser(&options, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return exitCodeOK
		}
		return exitCodeErr
	}

	if options.Version {
		fmt.Printf("wilt %s\n", version)
		return exitCodeOK
	}

	if options.Args.Name == "" {
		fmt.Fprintln(os.Stderr, "Missing name of the processes to watch")
		parser.WriteHelp(os.Stderr)
		return exitCodeErr
	}

	logger, err := logging.NewLogger("wilt", options.Debug, options.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", wiltErrors.WrappedErrNewLogger(err))
		return exitCodeErr
	}
	defer logger.Sync() // nolint:errcheck

	logger.Info("Start wilt", zap.String("Query", options.Args.Name), zap.String("Version", version))
	if err := watch(logger); err != nil {
		logger.Error("Failed to watch processes", zap.Error(err))
		fmt.Fprintf(os.Stderr, "wilt: %v\n", err)
		return exitCodeErr
	}

	logger.Info("Stop wilt")
	return exitCodeOK
}

// watch runs the control plane and the renderer until either stops, and always waits for both.
func watch(logger *zap.Logger) error {
	config := &control.PlaneConfig{
		Query:           options.Args.Name,
		TickInterval:    options.Interval,
		ReadTimeout:     options.ReadTimeout,
		HistoryCapacity: options.History,
	}

	matcher := processes.NewMatcher(logger)
	sampler := processes.NewSampler(logger, options.ReadTimeout)

	var publish func(snapshot state.Snapshot)
	plane, err := control.NewPlane(logger, config, matcher, sampler,
		control.WithPublisher(func(snapshot state.Snapshot) {
			publish(snapshot)
		}))
	if err != nil {
		return wiltErrors.NewStartupError(wiltErrors.WrappedErrNewPlane(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Fail before the terminal is taken over when the process table cannot be read at all.
	if _, err := matcher.Find(ctx, config.Query); err != nil {
		return wiltErrors.NewStartupError(err)
	}

	program := tea.NewProgram(ui.NewModel(logger, config.Query, hostname(ctx, logger), plane.Submit),
		tea.WithAltScreen())
	publish = ui.Publisher(program)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	planeErrs := make(chan error, 1)
	go func() {
		planeErrs <- plane.Run(ctx)
	}()

	_, renderErr := program.Run()
	cancel()
	planeErr := <-planeErrs

	var errs error
	if renderErr != nil && !stdLibErrors.Is(renderErr, tea.ErrInterrupted) &&
		!stdLibErrors.Is(renderErr, tea.ErrProgramKilled) {
		errs = multierror.Append(errs, wiltErrors.NewTerminalError(wiltErrors.WrappedErrRunRenderer(renderErr)))
	}
	if planeErr != nil {
		errs = multierror.Append(errs, wiltErrors.WrappedErrRunPlane(planeErr))
	}
	return errs
}

// hostname logs the host description and returns its name. Failures only cost the header its hostname.
func hostname(ctx context.Context, logger *zap.Logger) string {
	info, err := host.Describe(ctx)
	if err != nil {
		logger.Warn("Failed to describe host", zap.Error(err))
		return ""
	}

	if info.MachineID, err = host.MachineID(); err != nil {
		logger.Debug("Failed to get machine id", zap.Error(err))
	}

	logger.Info("Watching host", info.Fields()...)
	return info.Hostname
}

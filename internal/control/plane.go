package control

import (
	"context"
	"time"

	wiltErrors "github.com/memlab/wilt/internal/errors"
	"github.com/memlab/wilt/internal/state"
	"github.com/memlab/wilt/internal/types"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

const commandsBuffer = 16

var ErrPlaneStopped = errors.New("control plane stopped")

type Matcher interface {
	Find(ctx context.Context, query string) ([]types.Match, error)
}

type Option func(p *Plane)

func WithTicker(newTicker func(interval time.Duration) Ticker) Option {
	return func(p *Plane) {
		p.newTicker = newTicker
	}
}

// WithPublisher is called with every snapshot, from the loop goroutine.
func WithPublisher(publish func(snapshot state.Snapshot)) Option {
	return func(p *Plane) {
		p.publish = publish
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Plane) {
		p.now = now
	}
}

// Plane is the engine loop. Run is the only goroutine that touches the registry.
type Plane struct {
	logger    *zap.Logger
	config    *PlaneConfig
	matcher   Matcher
	sampler   state.Sampler
	registry  *state.Registry
	commands  chan Command
	done      chan struct{}
	latest    atomic.Value
	running   *atomic.Bool
	quit      *atomic.Bool
	newTicker func(interval time.Duration) Ticker
	publish   func(snapshot state.Snapshot)
	now       func() time.Time
}

func NewPlane(rootLogger *zap.Logger, config *PlaneConfig, matcher Matcher, sampler state.Sampler,
	opts ...Option) (*Plane, error) {
	if valid, err := config.Valid(); !valid {
		return nil, wiltErrors.WrappedErrValidateConfig(err)
	}

	p := &Plane{
		logger:    rootLogger.Named("control-plane"),
		config:    config,
		matcher:   matcher,
		sampler:   sampler,
		registry:  state.NewRegistry(rootLogger, config.HistoryCapacity),
		commands:  make(chan Command, commandsBuffer),
		done:      make(chan struct{}),
		running:   atomic.NewBool(false),
		quit:      atomic.NewBool(false),
		newTicker: newTimeTicker,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Run ticks once right away, then multiplexes the ticker and submitted commands until quit,
// context cancellation or a fatal enumeration failure. A failure on the first tick is a StartupError.
func (p *Plane) Run(ctx context.Context) error {
	if !p.running.CAS(false, true) {
		return errors.New("control plane already running")
	}
	defer close(p.done)

	p.logger.Info("Start control plane", zap.String("Query", p.config.Query),
		zap.Duration("Interval", p.config.TickInterval), zap.Int("HistoryCapacity", p.config.HistoryCapacity))

	if err := p.tick(ctx); err != nil {
		p.stop()
		if ctx.Err() != nil {
			return nil
		}
		p.logger.Error("Failed first tick", zap.Error(err))
		return wiltErrors.NewStartupError(err)
	}

	ticker := p.newTicker(p.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Context done, stop control plane")
			p.stop()
			return nil
		case <-ticker.C():
			if err := p.tick(ctx); err != nil {
				p.stop()
				if ctx.Err() != nil {
					return nil
				}
				p.logger.Error("Failed tick", zap.Error(err))
				return err
			}
		case command := <-p.commands:
			p.logger.Info("Apply command", zap.Stringer("Command", command))

			stop, err := applyCommand(p.registry, command)
			if err != nil {
				p.logger.Error("Failed to apply command", zap.Error(err))
				continue
			}
			if stop {
				p.stop()
				return nil
			}
			p.publishSnapshot()
		}
	}
}

// tick runs discovery, sampling and wilt detection, then publishes.
func (p *Plane) tick(ctx context.Context) error {
	matches, err := p.matcher.Find(ctx, p.config.Query)
	if err != nil {
		return err
	}

	now := p.now()
	if discovered := p.registry.Discover(matches); discovered > 0 {
		p.logger.Debug("Discovered processes", zap.Int("Discovered", discovered), zap.Int("Records", p.registry.Len()))
	}
	p.registry.SampleAlive(ctx, p.sampler, now)
	p.registry.DetectWilted(matches, now)

	p.publishSnapshot()
	return nil
}

func (p *Plane) stop() {
	p.quit.Store(true)
	p.publishSnapshot()
}

func (p *Plane) publishSnapshot() {
	snapshot := p.registry.Snapshot(p.now())
	snapshot.Query = p.config.Query
	snapshot.Quit = p.quit.Load()

	p.latest.Store(snapshot)
	if p.publish != nil {
		p.publish(snapshot)
	}
}

// Submit queues a command for the loop. It fails once the loop has stopped.
func (p *Plane) Submit(ctx context.Context, command Command) error {
	select {
	case <-p.done:
		return ErrPlaneStopped
	default:
	}

	select {
	case p.commands <- command:
		return nil
	case <-p.done:
		return ErrPlaneStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Latest returns the most recently published snapshot; false before the first tick.
func (p *Plane) Latest() (state.Snapshot, bool) {
	snapshot, ok := p.latest.Load().(state.Snapshot)
	return snapshot, ok
}

func (p *Plane) Done() <-chan struct{} {
	return p.done
}

func (p *Plane) Quit() bool {
	return p.quit.Load()
}

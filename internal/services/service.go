package services

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"sensor-bot/internal/logging"
)

// DefaultJoinTimeout is how long Run waits for each unit after cancellation.
const DefaultJoinTimeout = time.Second

var ErrAlreadyStarted = errors.New("service already started")

// State is the lifecycle phase of a Service.
type State int32

const (
	Idle State = iota
	Running
	Stopping
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Unit is one long-running loop owned by the Service.
type Unit struct {
	Name string
	Run  func(ctx context.Context) error
}

// Service starts every unit, shares one cancellation signal between them
// and joins them with a bounded wait on shutdown.
type Service struct {
	units       []Unit
	joinTimeout time.Duration
	logger      *logging.Logger
	state       atomic.Int32
}

// New constructs a Service for units.
func New(logger *logging.Logger, units ...Unit) *Service {
	return &Service{units: units, joinTimeout: DefaultJoinTimeout, logger: logger}
}

func (s *Service) State() State {
	return State(s.state.Load())
}

// Units lists the names of the managed units.
func (s *Service) Units() []string {
	names := make([]string, len(s.units))
	for i, u := range s.units {
		names[i] = u.Name
	}
	return names
}

// Run blocks until parent is done or a unit fails. It returns the failure,
// or nil when stopped from outside.
func (s *Service) Run(parent context.Context) error {
	if !s.state.CompareAndSwap(int32(Idle), int32(Running)) {
		return ErrAlreadyStarted
	}
	ctx, cancel := context.WithCancelCause(parent)
	defer cancel(nil)

	done := make([]chan struct{}, len(s.units))
	for i, u := range s.units {
		done[i] = make(chan struct{})
		go s.worker(ctx, cancel, u, done[i])
	}
	s.logger.Infof("Started %d units: %v", len(s.units), s.Units())

	<-ctx.Done()
	s.state.Store(int32(Stopping))
	cause := context.Cause(ctx)
	if isShutdown(cause) {
		s.logger.Infof("Shutdown requested")
	} else {
		s.logger.Errorf("Stopping after fatal error: %v", cause)
	}

	for i, u := range s.units {
		select {
		case <-done[i]:
		case <-time.After(s.joinTimeout):
			s.logger.Warnf("Unit %s did not stop within %s, abandoning it", u.Name, s.joinTimeout)
		}
	}
	s.state.Store(int32(Stopped))
	s.logger.Infof("Stopped")

	if isShutdown(cause) {
		return nil
	}
	return cause
}

// worker runs one unit and raises the shared cancellation if it fails.
func (s *Service) worker(ctx context.Context, cancel context.CancelCauseFunc, u Unit, done chan struct{}) {
	defer close(done)
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf("Unit %s panicked: %v\n%s", u.Name, r, debug.Stack())
			cancel(fmt.Errorf("unit %s panicked: %v", u.Name, r))
		}
	}()

	err := u.Run(ctx)
	switch {
	case err != nil && !isShutdown(err):
		cancel(fmt.Errorf("%s: %w", u.Name, err))
	case ctx.Err() == nil:
		s.logger.Warnf("Unit %s exited early", u.Name)
	default:
		s.logger.Debugf("Unit %s finished", u.Name)
	}
}

func isShutdown(err error) bool {
	return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

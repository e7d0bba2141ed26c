// Package server provides application lifecycle management: ordered startup,
// reverse-order shutdown, and termination signal handling.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Component is a long-running part of the server. Start must return promptly
// once the component is running; Stop must release its resources.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// funcComponent adapts a start/stop function pair into a Component.
type funcComponent struct {
	name  string
	start func(ctx context.Context) error
	stop  func(ctx context.Context) error
}

// NewComponent wraps start and stop functions as a named Component. Either
// function may be nil to mean "nothing to do".
func NewComponent(name string, start, stop func(ctx context.Context) error) Component {
	return &funcComponent{name: name, start: start, stop: stop}
}

func (f *funcComponent) Name() string { return f.name }

func (f *funcComponent) Start(ctx context.Context) error {
	if f.start == nil {
		return nil
	}
	return f.start(ctx)
}

func (f *funcComponent) Stop(ctx context.Context) error {
	if f.stop == nil {
		return nil
	}
	return f.stop(ctx)
}

// Lifecycle starts components in registration order and stops them in
// reverse order on shutdown.
type Lifecycle struct {
	log        *zap.Logger
	components []Component
	// StopTimeout bounds each component's Stop call.
	StopTimeout time.Duration
}

// NewLifecycle creates an empty lifecycle manager.
//
// Precondition: log must be non-nil.
func NewLifecycle(log *zap.Logger) *Lifecycle {
	return &Lifecycle{log: log, StopTimeout: 10 * time.Second}
}

// Add registers a component. Components start in the order added.
func (l *Lifecycle) Add(c Component) {
	l.components = append(l.components, c)
}

// Run starts every component, then blocks until ctx is cancelled or a
// SIGINT/SIGTERM arrives, then stops everything in reverse order.
//
// Postcondition: Every successfully started component has been stopped when
// Run returns.
func (l *Lifecycle) Run(ctx context.Context) error {
	started := make([]Component, 0, len(l.components))
	for _, c := range l.components {
		l.log.Info("starting component", zap.String("component", c.Name()))
		if err := c.Start(ctx); err != nil {
			l.stopAll(started)
			return fmt.Errorf("starting %s: %w", c.Name(), err)
		}
		started = append(started, c)
	}
	l.log.Info("server up", zap.Int("components", len(started)))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		l.log.Info("signal received, shutting down", zap.String("signal", sig.String()))
	case <-ctx.Done():
		l.log.Info("context cancelled, shutting down")
	}

	l.stopAll(started)
	l.log.Info("shutdown complete")
	return nil
}

// stopAll stops components in reverse start order, bounding each stop.
func (l *Lifecycle) stopAll(started []Component) {
	for i := len(started) - 1; i >= 0; i-- {
		c := started[i]
		ctx, cancel := context.WithTimeout(context.Background(), l.StopTimeout)
		if err := c.Stop(ctx); err != nil {
			l.log.Warn("component stop failed",
				zap.String("component", c.Name()),
				zap.Error(err))
		} else {
			l.log.Info("component stopped", zap.String("component", c.Name()))
		}
		cancel()
	}
}

// Package app runs the long-lived parts of a simulation process and shuts
// them down on SIGINT, SIGTERM, context cancellation or completion.
package app

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is a component that runs until it finishes or is stopped.
type Service interface {
	// Start runs the service and blocks until it finishes or Stop is called.
	Start() error
	// Stop asks a running Start to return.
	Stop()
}

// Funcs adapts a start/stop function pair into a Service.
type Funcs struct {
	StartFn func() error
	StopFn  func()
}

// Start calls StartFn.
func (f Funcs) Start() error { return f.StartFn() }

// Stop calls StopFn when set.
func (f Funcs) Stop() {
	if f.StopFn != nil {
		f.StopFn()
	}
}

// Lifecycle starts services together and stops them in reverse order.
type Lifecycle struct {
	logger   *zap.Logger
	mu       sync.Mutex
	services []namedService
}

type namedService struct {
	name    string
	service Service
}

type outcome struct {
	name string
	err  error
}

// NewLifecycle creates an empty Lifecycle.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger}
}

// Add registers a named service.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services = append(l.services, namedService{name: name, service: svc})
}

// Run starts every service and blocks until a termination signal arrives,
// ctx is cancelled, any service fails, or every service has finished.
//
// Postcondition: Every service has been stopped and has returned from
// Start. Returns the first service error, or nil.
func (l *Lifecycle) Run(ctx context.Context) error {
	l.mu.Lock()
	services := append([]namedService(nil), l.services...)
	l.mu.Unlock()

	start := time.Now()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	results := make(chan outcome, len(services))
	for _, ns := range services {
		go func(ns namedService) {
			l.logger.Info("starting service", zap.String("service", ns.name))
			results <- outcome{name: ns.name, err: ns.service.Start()}
		}(ns)
	}
	l.logger.Info("all services started",
		zap.Int("count", len(services)),
		zap.Duration("startup", time.Since(start)),
	)

	var firstErr error
	running := len(services)
wait:
	for running > 0 {
		select {
		case <-ctx.Done():
			l.logger.Info("shutting down", zap.NamedError("cause", context.Cause(ctx)))
			break wait
		case res := <-results:
			running--
			if res.err != nil {
				l.logger.Error("service failed", zap.String("service", res.name), zap.Error(res.err))
				firstErr = fmt.Errorf("service %s: %w", res.name, res.err)
				break wait
			}
			l.logger.Info("service finished", zap.String("service", res.name))
		}
	}

	l.shutdown(services)
	for ; running > 0; running-- {
		if res := <-results; res.err != nil && firstErr == nil {
			firstErr = fmt.Errorf("service %s: %w", res.name, res.err)
		}
	}

	l.logger.Info("shutdown complete", zap.Duration("total_uptime", time.Since(start)))
	return firstErr
}

func (l *Lifecycle) shutdown(services []namedService) {
	shutdownStart := time.Now()
	for i := len(services) - 1; i >= 0; i-- {
		ns := services[i]
		svcStart := time.Now()
		ns.service.Stop()
		l.logger.Info("service stopped",
			zap.String("service", ns.name),
			zap.Duration("elapsed", time.Since(svcStart)),
		)
	}
	l.logger.Info("all services stopped", zap.Duration("shutdown_elapsed", time.Since(shutdownStart)))
}

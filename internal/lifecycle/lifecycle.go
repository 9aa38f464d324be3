// Package lifecycle runs the long-lived parts of a castbot process and stops
// them on SIGINT, SIGTERM or the first failure.
package lifecycle

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is a long-running component. Start blocks until the service is
// stopped, finishes its work (returning nil) or fails.
type Service interface {
	Start() error
	Stop()
}

// FuncService adapts a start/stop function pair into the Service interface.
type FuncService struct {
	StartFn func() error
	StopFn  func()
}

// Start calls the underlying start function.
func (f *FuncService) Start() error { return f.StartFn() }

// Stop calls the underlying stop function, if any.
func (f *FuncService) Stop() {
	if f.StopFn != nil {
		f.StopFn()
	}
}

// ContextService runs fn with a context that Stop cancels.
func ContextService(ctx context.Context, fn func(ctx context.Context) error) *FuncService {
	ctx, cancel := context.WithCancel(ctx)
	return &FuncService{
		StartFn: func() error { return fn(ctx) },
		StopFn:  cancel,
	}
}

type namedService struct {
	name    string
	service Service
}

type outcome struct {
	name string
	err  error
}

// Lifecycle starts services together and stops them in reverse order.
type Lifecycle struct {
	logger   *zap.Logger
	signals  []os.Signal
	mu       sync.Mutex
	services []namedService
}

// New creates a Lifecycle that shuts down on SIGINT and SIGTERM.
//
// Precondition: logger must be non-nil.
func New(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger, signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM}}
}

// Add registers a named service. Services are started in the order added.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services = append(l.services, namedService{name: name, service: svc})
}

// Run starts every service and blocks until all of them finished, one
// failed, a termination signal arrived or ctx was cancelled. Services are
// then stopped in reverse order.
//
// Postcondition: every service is stopped; the first service error, if
// any, is returned.
func (l *Lifecycle) Run(ctx context.Context) error {
	start := time.Now()
	l.mu.Lock()
	services := append([]namedService(nil), l.services...)
	l.mu.Unlock()

	done := make(chan outcome, len(services))
	for _, ns := range services {
		ns := ns
		go func() {
			l.logger.Info("starting service", zap.String("service", ns.name))
			svcStart := time.Now()
			err := ns.service.Start()
			if err != nil {
				l.logger.Error("service failed",
					zap.String("service", ns.name),
					zap.Error(err),
					zap.Duration("uptime", time.Since(svcStart)),
				)
			} else {
				l.logger.Info("service finished",
					zap.String("service", ns.name),
					zap.Duration("uptime", time.Since(svcStart)),
				)
			}
			done <- outcome{name: ns.name, err: err}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, l.signals...)
	defer signal.Stop(sigCh)

	var runErr error
	remaining := len(services)
wait:
	for remaining > 0 {
		select {
		case sig := <-sigCh:
			l.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
			break wait
		case o := <-done:
			remaining--
			if o.err != nil {
				runErr = fmt.Errorf("service %s: %w", o.name, o.err)
				break wait
			}
		case <-ctx.Done():
			l.logger.Info("context cancelled, shutting down")
			break wait
		}
	}

	l.shutdown(services)
	l.logger.Info("shutdown complete", zap.Duration("total_uptime", time.Since(start)))
	return runErr
}

func (l *Lifecycle) shutdown(services []namedService) {
	for i := len(services) - 1; i >= 0; i-- {
		ns := services[i]
		svcStart := time.Now()
		ns.service.Stop()
		l.logger.Info("service stopped",
			zap.String("service", ns.name),
			zap.Duration("elapsed", time.Since(svcStart)),
		)
	}
}

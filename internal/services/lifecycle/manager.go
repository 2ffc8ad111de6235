package lifecycle

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// CloseFunc releases one component during shutdown.
type CloseFunc func(ctx context.Context) error

type closer struct {
	name  string
	close CloseFunc
}

// Manager tears the process down in reverse registration order, so consumers
// stop before the stores they depend on.
type Manager struct {
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	closers []closer
}

func New(timeout time.Duration, logger *zap.Logger) *Manager {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		timeout: timeout,
		logger:  logger,
	}
}

// Register adds a named shutdown step. Nil functions are ignored.
func (m *Manager) Register(name string, fn CloseFunc) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	m.closers = append(m.closers, closer{name: name, close: fn})
	m.mu.Unlock()
}

// Shutdown runs every registered step under a single deadline. A failing step
// is logged and does not stop the remaining ones.
func (m *Manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	m.mu.Lock()
	steps := make([]closer, len(m.closers))
	copy(steps, m.closers)
	m.mu.Unlock()

	var errs []error
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		started := time.Now()
		if err := step.close(ctx); err != nil {
			m.logger.Error("shutdown step failed",
				zap.String("component", step.name),
				zap.Error(err))
			errs = append(errs, err)
			continue
		}
		m.logger.Info("component stopped",
			zap.String("component", step.name),
			zap.Duration("took", time.Since(started)))
	}
	return errors.Join(errs...)
}

// Listen invokes cancel once SIGTERM or SIGINT arrives.
func (m *Manager) Listen(cancel context.CancelFunc) {
	if cancel == nil {
		return
	}
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		defer signal.Stop(sigCh)
		sig := <-sigCh
		m.logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		cancel()
	}()
}

package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/taskhive/backend/internal/infrastructure/buffer"
)

const probeTimeout = 3 * time.Second

// Status is the latest health snapshot of the backing stores.
type Status struct {
	PostgreSQL bool      `json:"postgresql"`
	Redis      bool      `json:"redis"`
	Buffer     bool      `json:"buffer"`
	BufferSize int       `json:"buffer_size"`
	LastCheck  time.Time `json:"last_check"`
}

// Monitor probes the backing stores on an interval. The buffer processor
// consults it before draining and the health endpoint reports its snapshot.
type Monitor struct {
	pg     *pgxpool.Pool
	redis  *redislib.Client
	buffer *buffer.Store
	logger *zap.Logger

	interval time.Duration
	cancel   context.CancelFunc

	mu     sync.RWMutex
	status Status
}

func New(pg *pgxpool.Pool, redis *redislib.Client, buf *buffer.Store, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		pg:       pg,
		redis:    redis,
		buffer:   buf,
		interval: interval,
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		m.probe(ctx)
		for {
			select {
			case <-ticker.C:
				m.probe(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (m *Monitor) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
}

// IsOnline reports whether the primary store is reachable. Redis being down
// only degrades the AI cache, so it does not gate task writes.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.PostgreSQL
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	next := Status{LastCheck: time.Now()}

	if m.pg != nil {
		next.PostgreSQL = m.pg.Ping(ctx) == nil
	}
	if m.redis != nil {
		next.Redis = m.redis.Ping(ctx).Err() == nil
	}
	if m.buffer != nil {
		size, err := m.buffer.Size()
		next.Buffer = err == nil
		next.BufferSize = size
		if err != nil {
			m.logger.Warn("buffer size check failed", zap.Error(err))
		}
	}

	m.mu.Lock()
	prev := m.status.PostgreSQL
	m.status = next
	m.mu.Unlock()

	if prev != next.PostgreSQL {
		m.logger.Info("primary store availability changed", zap.Bool("online", next.PostgreSQL))
	}
}

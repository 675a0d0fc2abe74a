package infra

import (
	"context"
	"sync"
	"time"

	"cms-maintenance/middleware/guard/domain"

	"golang.org/x/time/rate"
)

const (
	defaultIdleTTL      = 15 * time.Minute
	defaultCleanupEvery = 2 * time.Minute
)

// Store guarda um token bucket (x/time/rate) por chave. Buckets sem uso por
// mais de idleTTL são descartados pelo janitor.
type Store struct {
	mu           sync.Mutex
	buckets      map[string]*bucket
	rps          rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type StoreOption func(*Store)

func WithIdleTTL(d time.Duration) StoreOption {
	return func(s *Store) { s.idleTTL = d }
}

// WithCleanupEvery define o intervalo do janitor; <= 0 desliga o janitor.
func WithCleanupEvery(d time.Duration) StoreOption {
	return func(s *Store) { s.cleanupEvery = d }
}

func NewStore(rps float64, burst int, opts ...StoreOption) *Store {
	s := &Store{
		buckets:      make(map[string]*bucket),
		rps:          rate.Limit(rps),
		burst:        burst,
		idleTTL:      defaultIdleTTL,
		cleanupEvery: defaultCleanupEvery,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewIntervalStore libera `limit` requests a cada `interval` (padrão: 1 por
// minuto). O bucket fica em memória por pelo menos dois intervalos, senão o
// janitor devolveria tokens antes da hora.
func NewIntervalStore(limit int, interval time.Duration, opts ...StoreOption) *Store {
	if limit <= 0 {
		limit = 1
	}
	if interval <= 0 {
		interval = time.Minute
	}

	idle := defaultIdleTTL
	if 2*interval > idle {
		idle = 2 * interval
	}
	opts = append([]StoreOption{WithIdleTTL(idle)}, opts...)
	return NewStore(float64(limit)/interval.Seconds(), limit, opts...)
}

func (s *Store) RPS() float64           { return float64(s.rps) }
func (s *Store) Burst() int             { return s.burst }
func (s *Store) IdleTTL() time.Duration { return s.idleTTL }

// Get implementa domain.LimiterStore.
func (s *Store) Get(key domain.Key) domain.Limiter {
	return s.limiter(string(key), time.Now())
}

func (s *Store) limiter(key string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(s.rps, s.burst)}
		s.buckets[key] = b
	}
	b.lastSeen = now
	return b.lim
}

// Len retorna quantos buckets estão em memória.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

func (s *Store) Cleanup() {
	s.cleanupBefore(time.Now().Add(-s.idleTTL))
}

func (s *Store) cleanupBefore(cutoff time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, b := range s.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(s.buckets, key)
		}
	}
}

// StartJanitor roda Cleanup periodicamente até ctx terminar.
func (s *Store) StartJanitor(ctx context.Context) {
	if s.cleanupEvery <= 0 {
		return
	}

	go func() {
		t := time.NewTicker(s.cleanupEvery)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}

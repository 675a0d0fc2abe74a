package infra

import (
	"context"
	"sync"
	"time"

	"cms-maintenance/middleware/guard/domain"
)

// MemoryLockFactory cria locks nomeados válidos dentro do processo.
// Cada nome é um semáforo de capacidade 1 (channel).
type MemoryLockFactory struct {
	mu   sync.Mutex
	sems map[string]chan struct{}
}

func NewMemoryLockFactory() *MemoryLockFactory {
	return &MemoryLockFactory{sems: make(map[string]chan struct{})}
}

func (f *MemoryLockFactory) CreateLock(name string, ttl time.Duration) domain.Lock {
	return &memoryLock{sem: f.sem(name), ttl: ttl}
}

func (f *MemoryLockFactory) sem(name string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sems[name]
	if !ok {
		s = make(chan struct{}, 1)
		f.sems[name] = s
	}
	return s
}

type memoryLock struct {
	sem chan struct{}
	ttl time.Duration

	mu    sync.Mutex
	held  bool
	timer *time.Timer
}

func (l *memoryLock) Acquire(ctx context.Context) error {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.held = true
	if l.ttl > 0 {
		// expira sozinho se o dono nunca liberar
		l.timer = time.AfterFunc(l.ttl, l.expire)
	}
	return nil
}

func (l *memoryLock) Release(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.held {
		return domain.ErrLockNotHeld
	}
	if l.timer != nil {
		l.timer.Stop()
	}
	l.held = false
	<-l.sem
	return nil
}

func (l *memoryLock) expire() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held {
		l.held = false
		<-l.sem
	}
}

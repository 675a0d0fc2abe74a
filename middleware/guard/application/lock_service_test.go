package application

import (
	"context"
	"testing"
	"time"

	"cms-maintenance/middleware/guard/domain"
)

type blockingLock struct{}

func (blockingLock) Acquire(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Second):
		// não deve chegar aqui nos testes
		return context.DeadlineExceeded
	}
}

func (blockingLock) Release(context.Context) error { return nil }

type recordingLock struct {
	released *int
}

func (recordingLock) Acquire(context.Context) error { return nil }

func (l recordingLock) Release(context.Context) error {
	*l.released++
	return nil
}

type fakeFactory struct {
	names    []string
	ttls     []time.Duration
	lock     domain.Lock
	released int
}

func (f *fakeFactory) CreateLock(name string, ttl time.Duration) domain.Lock {
	f.names = append(f.names, name)
	f.ttls = append(f.ttls, ttl)
	if f.lock != nil {
		return f.lock
	}
	return recordingLock{released: &f.released}
}

func TestLockService_Acquire_AllowsWhenNoFactory(t *testing.T) {
	svc := LockService{}
	release, ok := svc.Acquire(context.Background(), "route")
	if !ok {
		t.Fatalf("expected ok")
	}
	if err := release(context.Background()); err != nil {
		t.Fatalf("unexpected release error: %v", err)
	}
}

func TestLockService_Acquire_UsesTimeout(t *testing.T) {
	svc := LockService{Factory: &fakeFactory{lock: blockingLock{}}, AcquireTimeout: 10 * time.Millisecond}

	_, ok := svc.Acquire(context.Background(), "route")
	if ok {
		t.Fatalf("expected timeout and ok=false")
	}
}

func TestLockService_Acquire_NamesLockAfterSlot(t *testing.T) {
	f := &fakeFactory{}
	svc := LockService{
		Factory: f,
		Slots:   5,
		TTL:     45 * time.Second,
		Rand: func(n int) int {
			if n != 6 {
				t.Fatalf("expected slot range of 6 (0..5 inclusive), got %d", n)
			}
			return 3
		},
	}

	release, ok := svc.Acquire(context.Background(), "media.website.image.proxy")
	if !ok {
		t.Fatalf("expected ok")
	}
	_ = release(context.Background())

	if len(f.names) != 1 || f.names[0] != "media.website.image.proxy3" {
		t.Fatalf("unexpected lock names: %v", f.names)
	}
	if f.ttls[0] != 45*time.Second {
		t.Fatalf("expected ttl 45s, got %s", f.ttls[0])
	}
	if f.released != 1 {
		t.Fatalf("expected one release, got %d", f.released)
	}
}

func TestLockService_Acquire_ZeroSlotsAlwaysUsesSlotZero(t *testing.T) {
	f := &fakeFactory{}
	svc := LockService{Factory: f}

	for i := 0; i < 3; i++ {
		release, ok := svc.Acquire(context.Background(), "r")
		if !ok {
			t.Fatalf("expected ok")
		}
		_ = release(context.Background())
	}
	for _, n := range f.names {
		if n != "r0" {
			t.Fatalf("expected lock r0, got %s", n)
		}
	}
}

func TestLockTTL(t *testing.T) {
	cases := map[time.Duration]time.Duration{
		0:                45 * time.Second,
		-1:               45 * time.Second,
		60 * time.Second: 45 * time.Second,
		30 * time.Second: 22500 * time.Millisecond,
	}
	for in, want := range cases {
		if got := LockTTL(in); got != want {
			t.Fatalf("LockTTL(%s) = %s, want %s", in, got, want)
		}
	}
}

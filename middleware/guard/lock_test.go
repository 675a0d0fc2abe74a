package guard

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"cms-maintenance/middleware/guard/infra"
)

const testRoute = "media.website.image.proxy"

func TestLockMiddleware_TimesOutWhenSlotIsHeld(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	secondDone := make(chan struct{})
	var startedOnce sync.Once

	// handler que segura o lock até liberarmos.
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startedOnce.Do(func() { close(started) })
		<-release
		w.WriteHeader(http.StatusOK)
	})

	h := LockMiddleware(LockOptions{
		Enabled:        true,
		Route:          testRoute,
		Factory:        infra.NewMemoryLockFactory(),
		Slots:          0,
		TTL:            time.Minute,
		AcquireTimeout: 25 * time.Millisecond,
	})(next)

	var wg sync.WaitGroup
	wg.Add(2)

	// request 1: ocupa o slot 0 e fica pendurada
	go func() {
		defer wg.Done()
		w1 := httptest.NewRecorder()
		h.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "http://example/img.jpg", nil))
		if w1.Code != http.StatusOK {
			t.Errorf("expected first request 200, got %d", w1.Code)
		}
	}()

	select {
	case <-started:
	case <-time.After(200 * time.Millisecond):
		close(release)
		wg.Wait()
		t.Fatalf("timeout waiting first request to start")
	}

	// request 2: mesmo slot, deve falhar por timeout
	go func() {
		defer wg.Done()
		w2 := httptest.NewRecorder()
		h.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "http://example/img.jpg", nil))
		if w2.Code != http.StatusServiceUnavailable {
			t.Errorf("expected second request 503, got %d", w2.Code)
		}
		close(secondDone)
	}()

	select {
	case <-secondDone:
	case <-time.After(500 * time.Millisecond):
		close(release)
		wg.Wait()
		t.Fatalf("timeout waiting second request to finish")
	}

	close(release)
	wg.Wait()
}

func TestLockMiddleware_ReleasesAfterResponse(t *testing.T) {
	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	h := LockMiddleware(LockOptions{
		Enabled:        true,
		Route:          testRoute,
		Factory:        infra.NewMemoryLockFactory(),
		TTL:            time.Minute,
		AcquireTimeout: 50 * time.Millisecond,
	})(next)

	// requests sequenciais no mesmo slot: só passam se o lock for liberado
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://example/", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestLockMiddleware_BoundsConcurrency(t *testing.T) {
	var inFlight, peak int32
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
	})

	var slot int32
	h := LockMiddleware(LockOptions{
		Enabled: true,
		Route:   testRoute,
		Factory: infra.NewMemoryLockFactory(),
		Slots:   1,
		TTL:     time.Minute,
		// distribui em round-robin entre os slots 0 e 1
		Rand: func(n int) int { return int(atomic.AddInt32(&slot, 1)) % n },
	})(next)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "http://example/", nil))
		}()
	}
	wg.Wait()

	if peak > 2 {
		t.Fatalf("expected at most 2 concurrent requests (slots 0..1), got %d", peak)
	}
}

func TestLockMiddleware_IgnoresOtherRoutes(t *testing.T) {
	f := infra.NewMemoryLockFactory()
	// slot 0 ocupado por fora: a rota protegida travaria
	held := f.CreateLock(testRoute+"0", time.Minute)
	if err := held.Acquire(t.Context()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h := LockMiddleware(LockOptions{
		Enabled:        true,
		Route:          testRoute,
		RouteFn:        StaticRoute("website.page"),
		Factory:        f,
		AcquireTimeout: 10 * time.Millisecond,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://example/", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected pass-through 204, got %d", w.Code)
	}
}

func TestLockMiddleware_DisabledIsPassThrough(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	mw := LockMiddleware(LockOptions{Enabled: false, Route: testRoute, Factory: infra.NewMemoryLockFactory()})

	if got := mw(next); got == nil {
		t.Fatalf("expected handler")
	}
	w := httptest.NewRecorder()
	mw(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://example/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestLockMiddleware_RecordsStats(t *testing.T) {
	stats := infra.NewMemoryStatsStore()
	h := LockMiddleware(LockOptions{
		Enabled: true,
		Route:   testRoute,
		Factory: infra.NewMemoryLockFactory(),
		Stats:   stats,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "http://example/x", nil))

	if got := stats.ByGuard()["lock"]; got.Allowed != 1 {
		t.Fatalf("expected one allowed lock event, got %+v", got)
	}
}

package infra

import (
	"context"
	"testing"

	"cms-maintenance/middleware/guard/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMemoryStatsStore_CountsByGuardAndRoute(t *testing.T) {
	s := NewMemoryStatsStore(WithTrackKeys(true))
	ctx := context.Background()

	_ = s.Record(ctx, domain.StatsEvent{Guard: domain.GuardLock, Key: "img0", Allowed: true, Method: "GET", Path: "/a"})
	_ = s.Record(ctx, domain.StatsEvent{Guard: domain.GuardLock, Key: "img0", Allowed: false, Method: "GET", Path: "/a"})
	_ = s.Record(ctx, domain.StatsEvent{Guard: domain.GuardRateLimit, Key: "img", Allowed: true, Method: "GET", Path: "/b"})

	if got := s.Total(); got.Allowed != 2 || got.Denied != 1 {
		t.Fatalf("unexpected total: %+v", got)
	}
	if got := s.ByGuard()[domain.GuardLock]; got.Allowed != 1 || got.Denied != 1 {
		t.Fatalf("unexpected lock counters: %+v", got)
	}
	if got := s.ByRoute()["GET /b"]; got.Allowed != 1 {
		t.Fatalf("unexpected route counters: %+v", got)
	}
	if got := s.ByKey()["img0"]; got.Allowed != 1 || got.Denied != 1 {
		t.Fatalf("unexpected key counters: %+v", got)
	}
}

func TestMemoryStatsStore_IgnoresKeysByDefault(t *testing.T) {
	s := NewMemoryStatsStore()
	_ = s.Record(context.Background(), domain.StatsEvent{Guard: domain.GuardLock, Key: "k", Allowed: true})

	if len(s.ByKey()) != 0 {
		t.Fatalf("expected no per-key counters without WithTrackKeys")
	}
}

func TestPrometheusStatsStore_IncrementsDecisions(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := NewPrometheusStatsStore(reg)
	if err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}

	_ = s.Record(context.Background(), domain.StatsEvent{Guard: domain.GuardLock, Allowed: true})
	_ = s.Record(context.Background(), domain.StatsEvent{Guard: domain.GuardLock, Allowed: false})
	_ = s.Record(context.Background(), domain.StatsEvent{Guard: domain.GuardLock, Allowed: true})

	if got := testutil.ToFloat64(s.decisions.WithLabelValues(domain.GuardLock, "allowed")); got != 2 {
		t.Fatalf("expected 2 allowed, got %v", got)
	}
	if got := testutil.ToFloat64(s.decisions.WithLabelValues(domain.GuardLock, "denied")); got != 1 {
		t.Fatalf("expected 1 denied, got %v", got)
	}
}

func TestPrometheusStatsStore_DoubleRegisterFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPrometheusStatsStore(reg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := NewPrometheusStatsStore(reg); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

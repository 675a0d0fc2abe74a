package infra

import (
	"context"

	"cms-maintenance/middleware/guard/domain"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusStatsStore exporta as decisões dos guards como métricas.
//
// Key e Path não viram labels (cardinalidade); só guard e outcome.
type PrometheusStatsStore struct {
	decisions *prometheus.CounterVec
	wait      *prometheus.HistogramVec
}

func NewPrometheusStatsStore(reg prometheus.Registerer) (*PrometheusStatsStore, error) {
	s := &PrometheusStatsStore{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cms",
			Subsystem: "guard",
			Name:      "decisions_total",
			Help:      "Guard decisions by guard and outcome.",
		}, []string{"guard", "outcome"}),
		wait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cms",
			Subsystem: "guard",
			Name:      "wait_seconds",
			Help:      "Time requests spent blocked in a guard.",
			Buckets:   []float64{.001, .01, .05, .1, .5, 1, 5, 15, 30, 60},
		}, []string{"guard"}),
	}

	for _, c := range []prometheus.Collector{s.decisions, s.wait} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *PrometheusStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	outcome := "denied"
	if ev.Allowed {
		outcome = "allowed"
	}
	s.decisions.WithLabelValues(ev.Guard, outcome).Inc()
	s.wait.WithLabelValues(ev.Guard).Observe(ev.Waited.Seconds())
	return nil
}

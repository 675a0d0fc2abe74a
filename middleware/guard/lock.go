package guard

import (
	"context"
	"net/http"
	"time"

	"cms-maintenance/middleware/guard/application"
	"cms-maintenance/middleware/guard/domain"

	"github.com/sirupsen/logrus"
)

type LockOptions struct {
	Enabled bool
	// Route é o nome da rota protegida; RouteFn resolve o nome de cada request.
	Route   string
	RouteFn RouteFunc

	Factory domain.LockFactory
	// Slots define o maior índice de slot; o sorteio é em [0, Slots].
	Slots int
	// TTL do lock (ver application.LockTTL).
	TTL time.Duration
	// AcquireTimeout 0 = espera até a request ser cancelada.
	AcquireTimeout time.Duration

	RejectStatus int
	Stats        domain.StatsStore
	Logger       logrus.FieldLogger
	Rand         func(n int) int
}

// LockMiddleware serializa as requests da rota protegida em slots de lock.
// O lock é sempre liberado quando o próximo handler retorna.
func LockMiddleware(opts LockOptions) func(next http.Handler) http.Handler {
	if !opts.Enabled || opts.Factory == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}
	if opts.RouteFn == nil {
		opts.RouteFn = StaticRoute(opts.Route)
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	svc := application.LockService{
		Factory:        opts.Factory,
		Slots:          opts.Slots,
		TTL:            opts.TTL,
		AcquireTimeout: opts.AcquireTimeout,
		Rand:           opts.Rand,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := opts.RouteFn(r)
			if route == "" || route != opts.Route {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			release, ok := svc.Acquire(r.Context(), route)
			recordStats(r, opts.Stats, opts.Logger, domain.StatsEvent{
				Guard:   domain.GuardLock,
				Key:     domain.Key(route),
				Allowed: ok,
				Waited:  time.Since(start),
			})
			if !ok {
				http.Error(w, http.StatusText(opts.RejectStatus), opts.RejectStatus)
				return
			}
			defer func() {
				// a request pode ter sido cancelada; o release não pode depender dela
				ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 5*time.Second)
				defer cancel()
				if err := release(ctx); err != nil {
					opts.Logger.WithError(err).WithField("route", route).Warn("lock release failed")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func recordStats(r *http.Request, stats domain.StatsStore, log logrus.FieldLogger, ev domain.StatsEvent) {
	if stats == nil {
		return
	}
	ev.Method = r.Method
	ev.Path = r.URL.Path
	ev.At = time.Now()
	if err := stats.Record(r.Context(), ev); err != nil {
		log.WithError(err).WithField("guard", ev.Guard).Debug("stats record failed")
	}
}

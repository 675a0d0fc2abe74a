package guard

import (
	"net"
	"net/http"
	"strings"
	"time"

	"cms-maintenance/middleware/guard/application"
	"cms-maintenance/middleware/guard/domain"

	"github.com/sirupsen/logrus"
)

// KeyFunc escolhe o bucket da request. route é o nome já resolvido da rota.
type KeyFunc func(r *http.Request, route string) string

type RateLimitOptions struct {
	Enabled bool
	Route   string
	RouteFn RouteFunc

	Store domain.LimiterStore
	Stats domain.StatsStore
	// KeyFn nil = um bucket por rota.
	KeyFn KeyFunc

	// Wait=true bloqueia até existir token; false responde RejectStatus na hora.
	Wait    bool
	MaxWait time.Duration

	RejectStatus        int
	RetryAfter          time.Duration
	AddRateLimitHeaders bool
	Logger              logrus.FieldLogger
}

type rateInfo interface {
	RPS() float64
	Burst() int
}

// RouteKeyFunc usa o nome da rota como chave (um bucket compartilhado).
func RouteKeyFunc(_ *http.Request, route string) string { return route }

// ClientKeyFunc cria um bucket por cliente da rota.
func ClientKeyFunc(keyHeader string, trustXFF bool) KeyFunc {
	return func(r *http.Request, route string) string {
		return route + ":" + clientKey(r, keyHeader, trustXFF)
	}
}

func clientKey(r *http.Request, keyHeader string, trustXFF bool) string {
	if keyHeader != "" {
		if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
			return v
		}
	}

	if trustXFF {
		// pega o primeiro IP do X-Forwarded-For (cliente original)
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			parts := strings.Split(xff, ",")
			if ip := strings.TrimSpace(parts[0]); ip != "" {
				return ip
			}
		}
	}

	// fallback: RemoteAddr
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

func RateLimitMiddleware(opts RateLimitOptions) func(next http.Handler) http.Handler {
	if !opts.Enabled || opts.Store == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusTooManyRequests
	}
	if opts.RetryAfter == 0 {
		opts.RetryAfter = 1 * time.Second
	}
	if opts.KeyFn == nil {
		opts.KeyFn = RouteKeyFunc
	}
	if opts.RouteFn == nil {
		opts.RouteFn = StaticRoute(opts.Route)
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	svc := application.Service{
		Store:      opts.Store,
		RetryAfter: opts.RetryAfter,
		MaxWait:    opts.MaxWait,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := opts.RouteFn(r)
			if route == "" || route != opts.Route {
				next.ServeHTTP(w, r)
				return
			}
			key := opts.KeyFn(r, route)

			if opts.AddRateLimitHeaders {
				w.Header().Set("X-RateLimit-Key", key)
				if ri, ok := opts.Store.(rateInfo); ok {
					w.Header().Set("X-RateLimit-RPS", formatFloat(ri.RPS()))
					w.Header().Set("X-RateLimit-Burst", formatInt(ri.Burst()))
				}
			}

			var (
				dec    domain.Decision
				waited time.Duration
			)
			if opts.Wait {
				dec, waited = svc.Wait(r.Context(), domain.Key(key))
			} else {
				dec = svc.Decide(domain.Key(key))
			}
			recordStats(r, opts.Stats, opts.Logger, domain.StatsEvent{
				Guard:   domain.GuardRateLimit,
				Key:     domain.Key(key),
				Allowed: dec.Allowed,
				Waited:  waited,
			})
			if !dec.Allowed {
				w.Header().Set("Retry-After", formatRetryAfter(dec.RetryAfter))
				http.Error(w, http.StatusText(opts.RejectStatus), opts.RejectStatus)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

package application

import (
	"context"
	"time"

	"cms-maintenance/middleware/guard/domain"
)

// Service concentra a regra de aplicação do rate limit.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão
// ou bloqueia até o token ficar disponível.
type Service struct {
	Store      domain.LimiterStore
	RetryAfter time.Duration
	// MaxWait limita a espera de Wait. 0 = espera até o ctx encerrar.
	MaxWait time.Duration
}

// Decide consome um token se houver, sem bloquear.
func (s Service) Decide(key domain.Key) domain.Decision {
	if s.Store == nil {
		return domain.Decision{Allowed: true}
	}
	if s.RetryAfter <= 0 {
		s.RetryAfter = 1 * time.Second
	}

	lim := s.Store.Get(key)
	if lim == nil {
		return domain.Decision{Allowed: true}
	}
	if lim.Allow() {
		return domain.Decision{Allowed: true}
	}
	return domain.Decision{Allowed: false, RetryAfter: s.RetryAfter}
}

// Wait bloqueia até existir um token para a chave e o consome.
// Retorna a decisão e quanto tempo esperou.
func (s Service) Wait(ctx context.Context, key domain.Key) (domain.Decision, time.Duration) {
	if s.Store == nil {
		return domain.Decision{Allowed: true}, 0
	}
	lim := s.Store.Get(key)
	if lim == nil {
		return domain.Decision{Allowed: true}, 0
	}

	if s.MaxWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.MaxWait)
		defer cancel()
	}

	start := time.Now()
	if err := lim.Wait(ctx); err != nil {
		retry := s.RetryAfter
		if retry <= 0 {
			retry = 1 * time.Second
		}
		return domain.Decision{Allowed: false, RetryAfter: retry}, time.Since(start)
	}
	return domain.Decision{Allowed: true}, time.Since(start)
}

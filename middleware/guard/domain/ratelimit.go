package domain

// Camada de domínio do rate limit.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import (
	"context"
	"time"
)

type Key string

// Limiter representa um token bucket.
//
// Allow consome um token se houver um disponível agora.
// Wait bloqueia até um token ficar disponível e o consome (ou retorna erro do ctx).
// *rate.Limiter (golang.org/x/time/rate) já satisfaz essa interface.
type Limiter interface {
	Allow() bool
	Wait(ctx context.Context) error
}

// LimiterStore obtém um limiter por chave (ex: nome da rota, IP, API key).
type LimiterStore interface {
	Get(Key) Limiter
}

type Decision struct {
	Allowed bool
	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
	// Se 0, não há recomendação.
	RetryAfter time.Duration
}

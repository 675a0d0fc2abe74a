package domain

import (
	"context"
	"time"
)

// Nomes dos guards que geram eventos de estatística.
const (
	GuardLock      = "lock"
	GuardRateLimit = "ratelimit"
)

// StatsEvent representa uma decisão de um guard.
//
// Para o lock, Allowed=true significa que o lock foi adquirido; false significa
// timeout/cancelamento. Para o rate limit, se a request passou ou foi bloqueada.
//
// Observação: cuidado com cardinalidade (ex.: salvar Key/Path sem controle pode
// explodir o número de séries/chaves em Redis/Prometheus).
type StatsEvent struct {
	Guard   string
	Key     Key
	Allowed bool

	Method string
	Path   string

	// Waited é quanto tempo a request ficou bloqueada esperando o guard.
	Waited time.Duration

	At time.Time
}

// StatsStore é a estratégia de persistência das estatísticas dos guards.
//
// O middleware trata erro como best-effort (não derruba a request).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}

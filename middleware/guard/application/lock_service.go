package application

import (
	"context"
	"math/rand/v2"
	"strconv"
	"time"

	"cms-maintenance/middleware/guard/domain"
)

// LockService concentra a regra de aquisição/liberação do lock de uma rota,
// sem saber nada sobre HTTP.
//
// Cada request sorteia um slot em [0, Slots] (intervalo fechado) e tenta o lock
// "<nome><slot>". Assim no máximo Slots+1 requests da rota rodam ao mesmo tempo.
type LockService struct {
	Factory        domain.LockFactory
	Slots          int
	TTL            time.Duration
	AcquireTimeout time.Duration

	// Rand retorna um inteiro em [0, n). Nil usa math/rand/v2.
	Rand func(n int) int
}

// LockName monta o nome do lock de um slot.
func LockName(name string, slot int) string {
	return name + strconv.Itoa(slot)
}

// Acquire tenta adquirir o lock de um slot da rota `name`.
// - Se `AcquireTimeout <= 0`, espera indefinidamente (até ctx cancelar).
// - Se `AcquireTimeout > 0`, espera até o timeout.
// Retorna (release, ok). Se ok=false, nenhum lock foi adquirido.
// release nunca é nil quando ok=true e deve ser chamado exatamente uma vez.
func (s LockService) Acquire(ctx context.Context, name string) (func(context.Context) error, bool) {
	if s.Factory == nil {
		return func(context.Context) error { return nil }, true
	}

	lock := s.Factory.CreateLock(LockName(name, s.slot()), s.TTL)

	acqCtx := ctx
	if s.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		acqCtx, cancel = context.WithTimeout(ctx, s.AcquireTimeout)
		defer cancel()
	}

	if err := lock.Acquire(acqCtx); err != nil {
		return nil, false
	}
	return lock.Release, true
}

func (s LockService) slot() int {
	if s.Slots <= 0 {
		return 0
	}
	if s.Rand != nil {
		return s.Rand(s.Slots + 1)
	}
	return rand.IntN(s.Slots + 1)
}

// LockTTL deriva o TTL do lock a partir do tempo máximo de execução de uma request:
// 75% do máximo, com 60s de máximo padrão quando não configurado.
func LockTTL(maxExecution time.Duration) time.Duration {
	if maxExecution <= 0 {
		maxExecution = 60 * time.Second
	}
	return maxExecution * 3 / 4
}

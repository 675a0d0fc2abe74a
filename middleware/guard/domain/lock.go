package domain

import (
	"context"
	"errors"
	"time"
)

// ErrLockNotHeld é retornado por Release quando o lock expirou ou pertence a outro dono.
var ErrLockNotHeld = errors.New("lock not held")

// Lock é um mutex nomeado.
//
// Acquire bloqueia até conseguir o lock ou até o ctx encerrar (retorna ctx.Err()).
// Release libera o lock; chamar Release sem ter adquirido é erro.
type Lock interface {
	Acquire(ctx context.Context) error
	Release(ctx context.Context) error
}

// LockFactory cria locks nomeados com TTL.
//
// O TTL é o tempo máximo que o lock fica retido caso o dono nunca chame Release
// (ex: processo morto no meio da request).
type LockFactory interface {
	CreateLock(name string, ttl time.Duration) Lock
}

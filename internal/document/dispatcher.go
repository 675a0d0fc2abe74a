package document

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

type Handler func(ctx context.Context, event Event) error

type subscription struct {
	priority int
	handler  Handler
}

// Dispatcher entrega eventos de forma síncrona, do maior para o menor
// priority (ordem de inscrição em caso de empate). O primeiro erro interrompe.
type Dispatcher struct {
	mu            sync.RWMutex
	subscriptions map[string][]subscription
	configurators []OptionsConfigurator
	logger        logrus.FieldLogger
}

func NewDispatcher(log logrus.FieldLogger) *Dispatcher {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Dispatcher{
		subscriptions: make(map[string][]subscription),
		logger:        log,
	}
}

func (d *Dispatcher) Subscribe(eventName string, priority int, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	subs := append(d.subscriptions[eventName], subscription{priority: priority, handler: handler})
	sort.SliceStable(subs, func(i, j int) bool { return subs[i].priority > subs[j].priority })
	d.subscriptions[eventName] = subs
}

func (d *Dispatcher) ConfigureOptions(configurator OptionsConfigurator) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.configurators = append(d.configurators, configurator)
}

// Configurators retorna uma cópia dos configurators registrados.
func (d *Dispatcher) Configurators() []OptionsConfigurator {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]OptionsConfigurator, len(d.configurators))
	copy(out, d.configurators)
	return out
}

// ResolveOptions resolve as opções a partir dos configurators registrados.
func (d *Dispatcher) ResolveOptions() Options {
	return ResolveOptions(d.Configurators()...)
}

func (d *Dispatcher) Dispatch(ctx context.Context, event Event) error {
	d.mu.RLock()
	subs := d.subscriptions[event.Name()]
	d.mu.RUnlock()

	d.logger.WithFields(logrus.Fields{"event": event.Name(), "handlers": len(subs)}).Debug("dispatch")

	for i, sub := range subs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sub.handler(ctx, event); err != nil {
			return fmt.Errorf("%s handler %d: %w", event.Name(), i, err)
		}
	}
	return nil
}

func (d *Dispatcher) SubscriberCount(eventName string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subscriptions[eventName])
}

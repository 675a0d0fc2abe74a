package document

import "cms-maintenance/internal/content"

const (
	EventPersist = "persist"
	EventHydrate = "hydrate"
)

type Event interface {
	Name() string
}

// PersistEvent grava Document no Node para o Locale.
type PersistEvent struct {
	Document *Document
	Locale   string
	Options  Options
	Node     content.Node
}

func (*PersistEvent) Name() string { return EventPersist }

// HydrateEvent preenche Document a partir do Node para o Locale.
type HydrateEvent struct {
	Document *Document
	Locale   string
	Options  Options
	Node     content.Node
}

func (*HydrateEvent) Name() string { return EventHydrate }

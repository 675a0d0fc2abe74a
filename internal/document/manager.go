package document

import (
	"context"
	"errors"
	"fmt"

	"cms-maintenance/internal/content"
)

// Manager carrega documentos de uma Session, mantendo um identity map por
// (id, locale) até Clear.
type Manager struct {
	session    content.Session
	dispatcher *Dispatcher
	options    Options
	identity   map[string]*Document
}

func NewManager(session content.Session, dispatcher *Dispatcher) *Manager {
	return &Manager{
		session:    session,
		dispatcher: dispatcher,
		options:    dispatcher.ResolveOptions(),
		identity:   make(map[string]*Document),
	}
}

func identityKey(id, locale string) string { return id + "\x00" + locale }

func (m *Manager) Find(ctx context.Context, id, locale string) (*Document, error) {
	key := identityKey(id, locale)
	if doc, ok := m.identity[key]; ok {
		return doc, nil
	}

	node, err := m.session.NodeByIdentifier(ctx, id)
	if errors.Is(err, content.ErrNodeNotFound) {
		return nil, fmt.Errorf("%s (%s): %w", id, locale, ErrDocumentNotFound)
	}
	if err != nil {
		return nil, err
	}

	doc := &Document{UUID: id, Locale: locale}
	event := &HydrateEvent{Document: doc, Locale: locale, Options: m.options, Node: node}
	if err := m.dispatcher.Dispatch(ctx, event); err != nil {
		return nil, fmt.Errorf("hydrate %s (%s): %w", id, locale, err)
	}

	m.identity[key] = doc
	return doc, nil
}

// Persist grava doc no nó da session; a gravação no backend fica para
// Session.Save.
func (m *Manager) Persist(ctx context.Context, doc *Document, locale string) error {
	if doc.UUID == "" {
		return fmt.Errorf("persist: document without uuid")
	}
	node, err := m.session.NodeByIdentifier(ctx, doc.UUID)
	if errors.Is(err, content.ErrNodeNotFound) {
		return fmt.Errorf("%s (%s): %w", doc.UUID, locale, ErrDocumentNotFound)
	}
	if err != nil {
		return err
	}

	event := &PersistEvent{Document: doc, Locale: locale, Options: m.options, Node: node}
	if err := m.dispatcher.Dispatch(ctx, event); err != nil {
		return fmt.Errorf("persist %s (%s): %w", doc.UUID, locale, err)
	}

	doc.Locale = locale
	m.identity[identityKey(doc.UUID, locale)] = doc
	return nil
}

// Clear esvazia o identity map.
func (m *Manager) Clear() {
	m.identity = make(map[string]*Document)
}

func (m *Manager) Len() int { return len(m.identity) }

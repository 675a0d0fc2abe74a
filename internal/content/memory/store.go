// Package memory é um repositório de conteúdo em memória.
//
// Usado nos testes e com STORE_DRIVER=memory (ex: rodar o cleanup contra um
// dump carregado no processo).
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"cms-maintenance/internal/content"

	"github.com/google/uuid"
)

type record struct {
	id       string
	path     string
	nodeType string
	props    []content.Property
}

// Store guarda os nós commitados. Cada Session trabalha sobre cópias.
type Store struct {
	mu    sync.RWMutex
	nodes map[string]*record
	saves int
}

func NewStore() *Store {
	return &Store{nodes: make(map[string]*record)}
}

// Add cria um nó commitado e retorna o identificador gerado.
func (s *Store) Add(path, nodeType string, props ...content.Property) string {
	id := uuid.NewString()
	s.AddWithID(id, path, nodeType, props...)
	return id
}

func (s *Store) AddWithID(id, path, nodeType string, props ...content.Property) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes[id] = &record{id: id, path: path, nodeType: nodeType, props: cloneProps(props)}
}

// Snapshot retorna as propriedades commitadas de um nó.
func (s *Store) Snapshot(id string) ([]content.Property, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.nodes[id]
	if !ok {
		return nil, false
	}
	return cloneProps(rec.props), true
}

// Saves conta quantas vezes Session.Save gravou ao menos um nó.
func (s *Store) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func (s *Store) Session() *Session {
	return &Session{store: s, loaded: make(map[string]*content.BaseNode)}
}

// Session mantém um identity map: o mesmo identificador sempre devolve o mesmo nó.
type Session struct {
	store  *Store
	loaded map[string]*content.BaseNode
}

var _ content.Session = (*Session)(nil)

func (s *Session) Query(ctx context.Context, nodeType string) ([]content.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.store.mu.RLock()
	recs := make([]*record, 0, len(s.store.nodes))
	for _, rec := range s.store.nodes {
		if rec.nodeType == nodeType {
			recs = append(recs, rec)
		}
	}
	s.store.mu.RUnlock()

	sort.Slice(recs, func(i, j int) bool { return recs[i].path < recs[j].path })

	out := make([]content.Node, 0, len(recs))
	for _, rec := range recs {
		out = append(out, s.attach(rec))
	}
	return out, nil
}

func (s *Session) NodeByIdentifier(ctx context.Context, id string) (content.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n, ok := s.loaded[id]; ok {
		return n, nil
	}

	s.store.mu.RLock()
	rec, ok := s.store.nodes[id]
	s.store.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("node %q: %w", id, content.ErrNodeNotFound)
	}
	return s.attach(rec), nil
}

func (s *Session) Save(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	wrote := false
	for id, n := range s.loaded {
		if !n.Dirty() {
			continue
		}
		rec, ok := s.store.nodes[id]
		if !ok {
			return fmt.Errorf("save node %q: %w", id, content.ErrNodeNotFound)
		}
		rec.props = n.Properties()
		n.MarkClean()
		wrote = true
	}
	if wrote {
		s.store.saves++
	}
	return nil
}

func (s *Session) attach(rec *record) *content.BaseNode {
	if n, ok := s.loaded[rec.id]; ok {
		return n
	}

	s.store.mu.RLock()
	n := content.NewBaseNode(rec.id, rec.path, rec.nodeType, rec.props)
	s.store.mu.RUnlock()

	s.loaded[rec.id] = n
	return n
}

func cloneProps(in []content.Property) []content.Property {
	out := make([]content.Property, len(in))
	copy(out, in)
	return out
}

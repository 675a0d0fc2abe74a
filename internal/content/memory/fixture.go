package memory

import (
	"fmt"
	"io"
	"os"
	"sort"

	"cms-maintenance/internal/content"

	"gopkg.in/yaml.v3"
)

// Formato do dump:
//
//	nodes:
//	  - id: 6f1c...            # opcional, gerado se ausente
//	    path: /articles/1
//	    type: nt:unstructured  # opcional
//	    properties:
//	      - {name: "i18n:en-title", value: "Hi"}
type fixture struct {
	Nodes []fixtureNode `yaml:"nodes"`
}

type fixtureNode struct {
	ID         string            `yaml:"id,omitempty"`
	Path       string            `yaml:"path"`
	Type       string            `yaml:"type,omitempty"`
	Properties []fixtureProperty `yaml:"properties"`
}

type fixtureProperty struct {
	Name  string `yaml:"name"`
	Value any    `yaml:"value"`
}

func ParseFixture(data []byte) (*Store, error) {
	var f fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}

	s := NewStore()
	for i, n := range f.Nodes {
		if n.Path == "" {
			return nil, fmt.Errorf("fixture node %d: missing path", i)
		}
		nodeType := n.Type
		if nodeType == "" {
			nodeType = content.NodeTypeUnstructured
		}
		props := make([]content.Property, 0, len(n.Properties))
		for _, p := range n.Properties {
			props = append(props, content.Property{Name: p.Name, Value: p.Value})
		}
		if n.ID == "" {
			s.Add(n.Path, nodeType, props...)
			continue
		}
		if _, dup := s.nodes[n.ID]; dup {
			return nil, fmt.Errorf("fixture node %s: duplicate id %q", n.Path, n.ID)
		}
		s.AddWithID(n.ID, n.Path, nodeType, props...)
	}
	return s, nil
}

func LoadFixture(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return ParseFixture(data)
}

// Dump escreve os nós commitados, ordenados por path, no formato do fixture.
func (s *Store) Dump(w io.Writer) error {
	s.mu.RLock()
	recs := make([]*record, 0, len(s.nodes))
	for _, rec := range s.nodes {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].path < recs[j].path })

	var f fixture
	for _, rec := range recs {
		n := fixtureNode{ID: rec.id, Path: rec.path, Type: rec.nodeType}
		for _, p := range rec.props {
			n.Properties = append(n.Properties, fixtureProperty{Name: p.Name, Value: p.Value})
		}
		f.Nodes = append(f.Nodes, n)
	}
	s.mu.RUnlock()

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode fixture: %w", err)
	}
	return enc.Close()
}

// WriteFixture grava o dump em path, substituindo o arquivo.
func (s *Store) WriteFixture(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}
	if err := s.Dump(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

package cleanup

import "cms-maintenance/internal/content"

// RecordingNode envolve um nó real e registra o nome de toda propriedade
// escrita ou removida através dele. Escritas e remoções ficam só no overlay;
// o nó real nunca é alterado. Leituras de propriedades não tocadas vão ao nó
// real.
type RecordingNode struct {
	node    content.Node
	keys    []string
	seen    map[string]struct{}
	values  map[string]any
	removed map[string]struct{}
}

var _ content.Node = (*RecordingNode)(nil)

func NewRecordingNode(node content.Node) *RecordingNode {
	return &RecordingNode{
		node:    node,
		seen:    make(map[string]struct{}),
		values:  make(map[string]any),
		removed: make(map[string]struct{}),
	}
}

func (r *RecordingNode) Identifier() string { return r.node.Identifier() }
func (r *RecordingNode) Path() string       { return r.node.Path() }

// WrittenPropertyKeys retorna os nomes escritos ou removidos, na ordem da
// primeira ocorrência.
func (r *RecordingNode) WrittenPropertyKeys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

func (r *RecordingNode) Written(name string) bool {
	_, ok := r.seen[name]
	return ok
}

func (r *RecordingNode) Properties() []content.Property {
	var out []content.Property
	known := make(map[string]struct{})
	for _, p := range r.node.Properties() {
		known[p.Name] = struct{}{}
		if _, gone := r.removed[p.Name]; gone {
			continue
		}
		if v, ok := r.values[p.Name]; ok {
			p.Value = v
		}
		out = append(out, p)
	}
	for _, name := range r.keys {
		if _, ok := known[name]; ok {
			continue
		}
		if v, ok := r.values[name]; ok {
			out = append(out, content.Property{Name: name, Value: v})
		}
	}
	return out
}

func (r *RecordingNode) Property(name string) (content.Property, bool) {
	if _, gone := r.removed[name]; gone {
		return content.Property{}, false
	}
	if v, ok := r.values[name]; ok {
		return content.Property{Name: name, Value: v}, true
	}
	return r.node.Property(name)
}

func (r *RecordingNode) HasProperty(name string) bool {
	_, ok := r.Property(name)
	return ok
}

func (r *RecordingNode) SetProperty(name string, value any) {
	r.record(name)
	delete(r.removed, name)
	r.values[name] = value
}

func (r *RecordingNode) RemoveProperty(name string) error {
	if !r.HasProperty(name) {
		return content.ErrPropertyNotFound
	}
	r.record(name)
	delete(r.values, name)
	r.removed[name] = struct{}{}
	return nil
}

func (r *RecordingNode) record(name string) {
	if _, ok := r.seen[name]; ok {
		return
	}
	r.seen[name] = struct{}{}
	r.keys = append(r.keys, name)
}

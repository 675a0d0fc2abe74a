package content

// BaseNode é a implementação de Node usada pelas sessions: guarda as
// propriedades em ordem de inserção e marca o nó como sujo a cada alteração.
type BaseNode struct {
	id       string
	path     string
	nodeType string
	props    []Property
	dirty    bool
}

func NewBaseNode(id, path, nodeType string, props []Property) *BaseNode {
	n := &BaseNode{id: id, path: path, nodeType: nodeType}
	for _, p := range props {
		n.set(p.Name, p.Value)
	}
	return n
}

func (n *BaseNode) Identifier() string { return n.id }
func (n *BaseNode) Path() string       { return n.path }
func (n *BaseNode) Type() string       { return n.nodeType }
func (n *BaseNode) Dirty() bool        { return n.dirty }
func (n *BaseNode) MarkClean()         { n.dirty = false }

func (n *BaseNode) Properties() []Property {
	out := make([]Property, len(n.props))
	copy(out, n.props)
	return out
}

func (n *BaseNode) Property(name string) (Property, bool) {
	if i := n.index(name); i >= 0 {
		return n.props[i], true
	}
	return Property{}, false
}

func (n *BaseNode) HasProperty(name string) bool { return n.index(name) >= 0 }

func (n *BaseNode) SetProperty(name string, value any) {
	n.set(name, value)
	n.dirty = true
}

func (n *BaseNode) RemoveProperty(name string) error {
	i := n.index(name)
	if i < 0 {
		return ErrPropertyNotFound
	}
	n.props = append(n.props[:i], n.props[i+1:]...)
	n.dirty = true
	return nil
}

func (n *BaseNode) set(name string, value any) {
	if i := n.index(name); i >= 0 {
		n.props[i].Value = value
		return
	}
	n.props = append(n.props, Property{Name: name, Value: value})
}

func (n *BaseNode) index(name string) int {
	for i, p := range n.props {
		if p.Name == name {
			return i
		}
	}
	return -1
}

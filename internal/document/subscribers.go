package document

import (
	"context"
	"fmt"
	"time"

	"cms-maintenance/internal/content"
)

// Prioridades: o SystemSubscriber roda antes para que o hydrate do conteúdo
// já encontre Document.Structure preenchido.
const (
	SystemPriority  = 10
	ContentPriority = 0
)

// Campos de sistema gravados por locale.
const (
	FieldTemplate = "template"
	FieldState    = "state"
	FieldCreated  = "created"
	FieldCreator  = "creator"
	FieldChanged  = "changed"
	FieldChanger  = "changer"
)

// RegisterSubscribers inscreve os subscribers padrão no dispatcher.
func RegisterSubscribers(d *Dispatcher, namespaces *content.NamespaceRegistry, structures *StructureRegistry) {
	(&SystemSubscriber{namespaces: namespaces}).Register(d)
	(&ContentSubscriber{namespaces: namespaces, structures: structures}).Register(d)
}

// SystemSubscriber grava template, workflow e autoria em
// "<system_localized>:<locale>-<campo>".
type SystemSubscriber struct {
	namespaces *content.NamespaceRegistry
}

func NewSystemSubscriber(namespaces *content.NamespaceRegistry) *SystemSubscriber {
	return &SystemSubscriber{namespaces: namespaces}
}

func (s *SystemSubscriber) Register(d *Dispatcher) {
	d.Subscribe(EventPersist, SystemPriority, s.persist)
	d.Subscribe(EventHydrate, SystemPriority, s.hydrate)
}

func (s *SystemSubscriber) name(locale, field string) string {
	return s.namespaces.LocalizedName(content.RoleSystemLocalized, locale, field)
}

func (s *SystemSubscriber) persist(_ context.Context, event Event) error {
	ev, ok := event.(*PersistEvent)
	if !ok {
		return nil
	}
	doc, node := ev.Document, ev.Node
	locale := eventLocale(ev.Locale, ev.Options)

	if doc.Structure != "" {
		node.SetProperty(s.name(locale, FieldTemplate), doc.Structure)
	}
	if doc.State != 0 {
		node.SetProperty(s.name(locale, FieldState), doc.State)
	}
	if !doc.Created.IsZero() {
		node.SetProperty(s.name(locale, FieldCreated), doc.Created.UTC().Format(time.RFC3339Nano))
	}
	if doc.Creator != "" {
		node.SetProperty(s.name(locale, FieldCreator), doc.Creator)
	}
	if !doc.Changed.IsZero() {
		node.SetProperty(s.name(locale, FieldChanged), doc.Changed.UTC().Format(time.RFC3339Nano))
	}
	if doc.Changer != "" {
		node.SetProperty(s.name(locale, FieldChanger), doc.Changer)
	}
	return nil
}

func (s *SystemSubscriber) hydrate(_ context.Context, event Event) error {
	ev, ok := event.(*HydrateEvent)
	if !ok {
		return nil
	}
	doc, node := ev.Document, ev.Node
	locale := eventLocale(ev.Locale, ev.Options)

	doc.UUID = node.Identifier()
	doc.Locale = locale

	if p, ok := node.Property(s.name(locale, FieldTemplate)); ok {
		doc.Structure = fmt.Sprint(p.Value)
	}
	if p, ok := node.Property(s.name(locale, FieldState)); ok {
		n, ok := toInt(p.Value)
		if !ok {
			return fmt.Errorf("node %s: invalid state %v", node.Path(), p.Value)
		}
		doc.State = n
	}
	if p, ok := node.Property(s.name(locale, FieldCreator)); ok {
		doc.Creator = fmt.Sprint(p.Value)
	}
	if p, ok := node.Property(s.name(locale, FieldChanger)); ok {
		doc.Changer = fmt.Sprint(p.Value)
	}

	var err error
	if doc.Created, err = readTime(node, s.name(locale, FieldCreated)); err != nil {
		return err
	}
	if doc.Changed, err = readTime(node, s.name(locale, FieldChanged)); err != nil {
		return err
	}
	return nil
}

// ContentSubscriber grava os campos da structure do documento em
// "<content_localized>:<locale>-<nome>".
type ContentSubscriber struct {
	namespaces *content.NamespaceRegistry
	structures *StructureRegistry
}

func NewContentSubscriber(namespaces *content.NamespaceRegistry, structures *StructureRegistry) *ContentSubscriber {
	return &ContentSubscriber{namespaces: namespaces, structures: structures}
}

func (s *ContentSubscriber) Register(d *Dispatcher) {
	d.Subscribe(EventPersist, ContentPriority, s.persist)
	d.Subscribe(EventHydrate, ContentPriority, s.hydrate)
	d.ConfigureOptions(func(o *Options) { o.ClearMissingContent = true })
}

func (s *ContentSubscriber) structure(name string) (Structure, error) {
	st, ok := s.structures.Get(name)
	if !ok {
		return Structure{}, fmt.Errorf("%q: %w", name, ErrStructureNotFound)
	}
	return st, nil
}

func (s *ContentSubscriber) persist(_ context.Context, event Event) error {
	ev, ok := event.(*PersistEvent)
	if !ok {
		return nil
	}
	structure, err := s.structure(ev.Document.Structure)
	if err != nil {
		return err
	}
	locale := eventLocale(ev.Locale, ev.Options)

	for _, prop := range structure.Properties {
		name := s.namespaces.LocalizedName(content.RoleContentLocalized, locale, prop.Name)
		value := ev.Document.Field(prop.Name)

		if prop.Type == PropertyTypeBlock {
			if err := persistBlock(ev.Node, name, prop.Children, value, ev.Options.ClearMissingContent); err != nil {
				return fmt.Errorf("property %s: %w", prop.Name, err)
			}
			continue
		}

		if value == nil {
			if ev.Options.ClearMissingContent {
				removeIfPresent(ev.Node, name)
			}
			continue
		}
		ev.Node.SetProperty(name, value)
	}
	return nil
}

func (s *ContentSubscriber) hydrate(_ context.Context, event Event) error {
	ev, ok := event.(*HydrateEvent)
	if !ok {
		return nil
	}
	// nó sem template neste locale: nada para ler
	if ev.Document.Structure == "" {
		return nil
	}
	structure, err := s.structure(ev.Document.Structure)
	if err != nil {
		return err
	}
	locale := eventLocale(ev.Locale, ev.Options)

	for _, prop := range structure.Properties {
		name := s.namespaces.LocalizedName(content.RoleContentLocalized, locale, prop.Name)

		if prop.Type == PropertyTypeBlock {
			items, err := hydrateBlock(ev.Node, name, prop.Children)
			if err != nil {
				return fmt.Errorf("property %s: %w", prop.Name, err)
			}
			if items != nil {
				ev.Document.SetField(prop.Name, items)
			}
			continue
		}

		if p, ok := ev.Node.Property(name); ok {
			ev.Document.SetField(prop.Name, p.Value)
		}
	}
	return nil
}

// persistBlock grava "<name>-length" e um "<name>-<child>#<i>" por filho.
func persistBlock(node content.Node, name string, children []string, value any, clear bool) error {
	if value == nil {
		if clear {
			removeIfPresent(node, name+"-length")
		}
		return nil
	}
	items, ok := blockItems(value)
	if !ok {
		return fmt.Errorf("unexpected block value %T", value)
	}

	node.SetProperty(name+"-length", len(items))
	for i, item := range items {
		for _, child := range children {
			key := blockChildName(name, child, i)
			if v := item[child]; v != nil {
				node.SetProperty(key, v)
			} else if clear {
				removeIfPresent(node, key)
			}
		}
	}
	return nil
}

func hydrateBlock(node content.Node, name string, children []string) ([]map[string]any, error) {
	p, ok := node.Property(name + "-length")
	if !ok {
		return nil, nil
	}
	length, ok := toInt(p.Value)
	if !ok || length < 0 {
		return nil, fmt.Errorf("invalid block length %v", p.Value)
	}

	items := make([]map[string]any, 0, length)
	for i := 0; i < length; i++ {
		item := make(map[string]any, len(children))
		for _, child := range children {
			if cp, ok := node.Property(blockChildName(name, child, i)); ok {
				item[child] = cp.Value
			}
		}
		items = append(items, item)
	}
	return items, nil
}

func blockChildName(name, child string, i int) string {
	return fmt.Sprintf("%s-%s#%d", name, child, i)
}

func blockItems(value any) ([]map[string]any, bool) {
	switch v := value.(type) {
	case []map[string]any:
		return v, true
	case []any:
		items := make([]map[string]any, 0, len(v))
		for _, raw := range v {
			m, ok := raw.(map[string]any)
			if !ok {
				return nil, false
			}
			items = append(items, m)
		}
		return items, true
	default:
		return nil, false
	}
}

func removeIfPresent(node content.Node, name string) {
	if node.HasProperty(name) {
		_ = node.RemoveProperty(name)
	}
}

func eventLocale(locale string, opts Options) string {
	if opts.Locale != "" {
		return opts.Locale
	}
	return locale
}

func readTime(node content.Node, name string) (time.Time, error) {
	p, ok := node.Property(name)
	if !ok {
		return time.Time{}, nil
	}
	switch v := p.Value.(type) {
	case time.Time:
		return v, nil
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, fmt.Errorf("node %s: property %s: %w", node.Path(), name, err)
		}
		return t, nil
	default:
		return time.Time{}, fmt.Errorf("node %s: property %s: unexpected %T", node.Path(), name, p.Value)
	}
}

// toInt aceita os tipos numéricos que os backends devolvem (int do store em
// memória, int32/int64 do BSON, float64 de JSON).
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

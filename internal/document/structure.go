package document

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	PropertyTypeText  = "text"
	PropertyTypeBlock = "block"
)

// Structure descreve os campos de conteúdo de um template.
type Structure struct {
	Name       string              `yaml:"name"`
	Properties []StructureProperty `yaml:"properties"`
}

type StructureProperty struct {
	Name string `yaml:"name"`
	// Type é "text" (padrão) ou "block".
	Type     string   `yaml:"type"`
	Children []string `yaml:"children,omitempty"`
}

type structuresFile struct {
	Structures []Structure `yaml:"structures"`
}

type StructureRegistry struct {
	structures map[string]Structure
}

func NewStructureRegistry(structures ...Structure) (*StructureRegistry, error) {
	r := &StructureRegistry{structures: make(map[string]Structure, len(structures))}
	for _, s := range structures {
		if err := r.add(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ParseStructures lê o formato:
//
//	structures:
//	  - name: article
//	    properties:
//	      - name: title
//	      - name: blocks
//	        type: block
//	        children: [type, text]
func ParseStructures(data []byte) (*StructureRegistry, error) {
	var f structuresFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse structures: %w", err)
	}
	return NewStructureRegistry(f.Structures...)
}

func LoadStructures(path string) (*StructureRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read structures: %w", err)
	}
	return ParseStructures(data)
}

func (r *StructureRegistry) Get(name string) (Structure, bool) {
	s, ok := r.structures[name]
	return s, ok
}

func (r *StructureRegistry) Len() int { return len(r.structures) }

func (r *StructureRegistry) add(s Structure) error {
	if s.Name == "" {
		return fmt.Errorf("structure without name")
	}
	if _, dup := r.structures[s.Name]; dup {
		return fmt.Errorf("structure %q defined twice", s.Name)
	}

	props := make([]StructureProperty, 0, len(s.Properties))
	for _, p := range s.Properties {
		if p.Name == "" {
			return fmt.Errorf("structure %q: property without name", s.Name)
		}
		switch p.Type {
		case "":
			p.Type = PropertyTypeText
		case PropertyTypeText:
		case PropertyTypeBlock:
			if len(p.Children) == 0 {
				return fmt.Errorf("structure %q: block %q without children", s.Name, p.Name)
			}
		default:
			return fmt.Errorf("structure %q: property %q has unknown type %q", s.Name, p.Name, p.Type)
		}
		props = append(props, p)
	}
	s.Properties = props
	r.structures[s.Name] = s
	return nil
}

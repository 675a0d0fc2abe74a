// Package document é o pipeline de documentos sobre o repositório de conteúdo:
// um Document é a visão tipada de um nó num locale, lida (hydrate) e gravada
// (persist) por subscribers registrados num Dispatcher.
package document

import (
	"errors"
	"time"
)

var (
	ErrDocumentNotFound  = errors.New("document not found")
	ErrStructureNotFound = errors.New("structure not found")
)

// Estados de workflow.
const (
	StateTest      = 1
	StatePublished = 2
)

type Document struct {
	UUID      string
	Locale    string
	Structure string
	State     int
	Created   time.Time
	Creator   string
	Changed   time.Time
	Changer   string
	// Fields guarda o conteúdo por nome de propriedade da structure: string
	// para "text", []map[string]any para "block". nil significa ausente.
	Fields map[string]any
}

func (d *Document) Field(name string) any {
	if d.Fields == nil {
		return nil
	}
	return d.Fields[name]
}

func (d *Document) SetField(name string, value any) {
	if d.Fields == nil {
		d.Fields = make(map[string]any)
	}
	d.Fields[name] = value
}

// Package content define o modelo do repositório de conteúdo: nós em árvore,
// cada um com propriedades nomeadas, acessados através de uma Session.
//
// Alterações feitas em nós obtidos de uma Session ficam pendentes até Save.
package content

import (
	"context"
	"errors"
)

// NodeTypeUnstructured é o tipo genérico de nó: todo nó de conteúdo é desse tipo.
const NodeTypeUnstructured = "nt:unstructured"

var (
	ErrNodeNotFound     = errors.New("node not found")
	ErrPropertyNotFound = errors.New("property not found")
)

type Property struct {
	Name  string
	Value any
}

// Node é um nó do repositório.
type Node interface {
	Identifier() string
	Path() string
	// Properties retorna uma cópia ordenada das propriedades atuais.
	Properties() []Property
	Property(name string) (Property, bool)
	HasProperty(name string) bool
	SetProperty(name string, value any)
	// RemoveProperty retorna ErrPropertyNotFound se a propriedade não existir.
	RemoveProperty(name string) error
}

type Session interface {
	// Query retorna todos os nós do tipo informado, ordenados por path.
	Query(ctx context.Context, nodeType string) ([]Node, error)
	NodeByIdentifier(ctx context.Context, id string) (Node, error)
	// Save grava no backend todos os nós alterados desde o último Save.
	Save(ctx context.Context) error
}

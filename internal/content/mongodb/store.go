// Package mongodb guarda o repositório de conteúdo numa coleção MongoDB.
//
// Cada nó é um documento:
//
//	{_id: <identifier>, path: "/articles/1", type: "nt:unstructured",
//	 properties: [{name: "i18n:en-title", value: "Hi"}, ...]}
//
// As propriedades ficam num array (e não num subdocumento) para manter a ordem
// e porque nomes de propriedade podem conter caracteres que o Mongo não aceita
// em chaves.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cms-maintenance/internal/content"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type nodeDocument struct {
	ID         string             `bson:"_id"`
	Path       string             `bson:"path"`
	Type       string             `bson:"type"`
	Properties []propertyDocument `bson:"properties"`
}

type propertyDocument struct {
	Name  string      `bson:"name"`
	Value interface{} `bson:"value"`
}

type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// New usa uma coleção já aberta (o chamador é dono da conexão).
func New(coll *mongo.Collection) *Store {
	return &Store{coll: coll}
}

// Connect abre a conexão, valida com ping e usa <database>.<collection>.
func Connect(ctx context.Context, uri, database, collection string, timeout time.Duration) (*Store, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &Store{client: client, coll: client.Database(database).Collection(collection)}, nil
}

func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func (s *Store) Session() *Session {
	return &Session{coll: s.coll, loaded: make(map[string]*content.BaseNode)}
}

type Session struct {
	coll   *mongo.Collection
	loaded map[string]*content.BaseNode
}

var _ content.Session = (*Session)(nil)

func (s *Session) Query(ctx context.Context, nodeType string) ([]content.Node, error) {
	opts := options.Find().SetSort(bson.D{{Key: "path", Value: 1}})

	cursor, err := s.coll.Find(ctx, bson.M{"type": nodeType}, opts)
	if err != nil {
		return nil, fmt.Errorf("query nodes of type %s: %w", nodeType, err)
	}
	defer cursor.Close(ctx)

	var nodes []content.Node
	for cursor.Next(ctx) {
		var doc nodeDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode node: %w", err)
		}
		nodes = append(nodes, s.attach(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return nodes, nil
}

func (s *Session) NodeByIdentifier(ctx context.Context, id string) (content.Node, error) {
	if n, ok := s.loaded[id]; ok {
		return n, nil
	}

	var doc nodeDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("node %q: %w", id, content.ErrNodeNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find node %q: %w", id, err)
	}
	return s.attach(doc), nil
}

// Save reescreve o array de propriedades de cada nó alterado.
func (s *Session) Save(ctx context.Context) error {
	for id, n := range s.loaded {
		if !n.Dirty() {
			continue
		}

		props := make([]propertyDocument, 0, len(n.Properties()))
		for _, p := range n.Properties() {
			props = append(props, propertyDocument{Name: p.Name, Value: p.Value})
		}

		res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"properties": props}})
		if err != nil {
			return fmt.Errorf("save node %q: %w", id, err)
		}
		if res.MatchedCount == 0 {
			return fmt.Errorf("save node %q: %w", id, content.ErrNodeNotFound)
		}
		n.MarkClean()
	}
	return nil
}

func (s *Session) attach(doc nodeDocument) *content.BaseNode {
	if n, ok := s.loaded[doc.ID]; ok {
		return n
	}

	props := make([]content.Property, 0, len(doc.Properties))
	for _, p := range doc.Properties {
		props = append(props, content.Property{Name: p.Name, Value: p.Value})
	}
	n := content.NewBaseNode(doc.ID, doc.Path, doc.Type, props)
	s.loaded[doc.ID] = n
	return n
}

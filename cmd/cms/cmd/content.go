package cmd

import (
	"context"
	"fmt"

	"cms-maintenance/internal/config"
	"cms-maintenance/internal/content"
	"cms-maintenance/internal/content/memory"
	"cms-maintenance/internal/content/mongodb"
	"cms-maintenance/internal/document"
)

type contentBackend struct {
	session content.Session
	close   func(context.Context) error
}

func (a *app) openContent(ctx context.Context) (*contentBackend, error) {
	cc := a.cfg.Content

	switch cc.StoreDriver {
	case config.StoreMemory:
		store := memory.NewStore()
		if cc.MemoryFixture != "" {
			var err error
			if store, err = memory.LoadFixture(cc.MemoryFixture); err != nil {
				return nil, err
			}
		} else {
			a.log.Warn("STORE_DRIVER=memory without MEMORY_FIXTURE: repository is empty")
		}
		return &contentBackend{
			session: store.Session(),
			close: func(context.Context) error {
				if cc.MemoryFixture == "" || store.Saves() == 0 {
					return nil
				}
				return store.WriteFixture(cc.MemoryFixture)
			},
		}, nil

	case config.StoreMongoDB:
		store, err := mongodb.Connect(ctx, cc.MongoURI, cc.MongoDatabase, cc.MongoCollection, cc.MongoTimeout)
		if err != nil {
			return nil, err
		}
		return &contentBackend{session: store.Session(), close: store.Close}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cc.StoreDriver)
	}
}

type pipeline struct {
	namespaces *content.NamespaceRegistry
	dispatcher *document.Dispatcher
	manager    *document.Manager
}

func (a *app) documentPipeline(session content.Session) (*pipeline, error) {
	structures, err := document.LoadStructures(a.cfg.Content.StructuresFile)
	if err != nil {
		return nil, err
	}
	a.log.WithField("structures", structures.Len()).Debug("structures loaded")

	ns := content.NewNamespaceRegistry(a.cfg.Namespaces())
	d := document.NewDispatcher(a.log.WithComponent("document"))
	document.RegisterSubscribers(d, ns, structures)

	return &pipeline{
		namespaces: ns,
		dispatcher: d,
		manager:    document.NewManager(session, d),
	}, nil
}

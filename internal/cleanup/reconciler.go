// Package cleanup remove propriedades localizadas órfãs do repositório de
// conteúdo.
//
// Para cada nó e locale, o documento é gravado de novo pelo pipeline sobre um
// RecordingNode; o que o pipeline escreveria hoje, mais a Whitelist, é
// mantido. As demais propriedades "i18n:<locale>..." são removidas.
package cleanup

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"cms-maintenance/internal/content"
	"cms-maintenance/internal/document"

	"github.com/sirupsen/logrus"
)

type DocumentManager interface {
	Find(ctx context.Context, id, locale string) (*document.Document, error)
	Clear()
}

type EventDispatcher interface {
	Dispatch(ctx context.Context, event document.Event) error
}

type Stats struct {
	Nodes             int
	Properties        int
	RemovedProperties int
}

type RunOptions struct {
	DryRun bool
	// Progress é chamado depois de cada nó com os totais acumulados.
	Progress func(Stats)
}

type Reconciler struct {
	session    content.Session
	documents  DocumentManager
	dispatcher EventDispatcher
	namespaces *content.NamespaceRegistry
	options    document.Options
	debug      io.Writer
	logger     logrus.FieldLogger
	pattern    *regexp.Regexp
}

type Option func(*Reconciler)

func WithNamespaces(ns *content.NamespaceRegistry) Option {
	return func(r *Reconciler) { r.namespaces = ns }
}

// WithPersistOptions define as opções enviadas em todo PersistEvent.
func WithPersistOptions(opts document.Options) Option {
	return func(r *Reconciler) { r.options = opts }
}

// WithDebugLog escreve um bloco de texto por nó/locale em w.
func WithDebugLog(w io.Writer) Option {
	return func(r *Reconciler) { r.debug = w }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Reconciler) { r.logger = l }
}

func NewReconciler(session content.Session, documents DocumentManager, dispatcher EventDispatcher, opts ...Option) *Reconciler {
	r := &Reconciler{
		session:    session,
		documents:  documents,
		dispatcher: dispatcher,
		namespaces: content.DefaultNamespaceRegistry(),
		options:    document.ResolveOptions(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		r.logger = l
	}
	r.pattern = localePattern(r.namespaces.Prefix(content.RoleSystemLocalized))
	return r
}

func (r *Reconciler) Run(ctx context.Context, opts RunOptions) (Stats, error) {
	var stats Stats

	nodes, err := r.session.Query(ctx, content.NodeTypeUnstructured)
	if err != nil {
		return stats, fmt.Errorf("query nodes: %w", err)
	}
	r.logger.WithField("nodes", len(nodes)).Debug("cleanup started")

	for _, node := range nodes {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Nodes++

		for _, locale := range localesFrom(node.Properties(), r.pattern) {
			outcomes, err := r.reconcile(ctx, node, locale, opts.DryRun)
			if err != nil {
				return stats, err
			}
			for _, removed := range outcomes {
				stats.Properties++
				if removed {
					stats.RemovedProperties++
				}
			}
		}

		if opts.Progress != nil {
			opts.Progress(stats)
		}
	}

	r.logger.WithFields(logrus.Fields{
		"nodes":              stats.Nodes,
		"properties":         stats.Properties,
		"removed_properties": stats.RemovedProperties,
		"dry_run":            opts.DryRun,
	}).Info("cleanup finished")
	return stats, nil
}

func (r *Reconciler) reconcile(ctx context.Context, node content.Node, locale string, dryRun bool) ([]bool, error) {
	doc, err := r.documents.Find(ctx, node.Identifier(), locale)
	if err != nil {
		return nil, fmt.Errorf("find document %s (%s): %w", node.Path(), locale, err)
	}

	recorder := NewRecordingNode(node)
	event := &document.PersistEvent{Document: doc, Locale: locale, Options: r.options, Node: recorder}
	if err := r.dispatcher.Dispatch(ctx, event); err != nil {
		return nil, fmt.Errorf("persist %s (%s): %w", node.Path(), locale, err)
	}
	r.documents.Clear()

	outcomes, err := r.cleanupNode(node, locale, recorder.WrittenPropertyKeys(), dryRun)
	if err != nil {
		return nil, err
	}

	if err := r.session.Save(ctx); err != nil {
		return nil, fmt.Errorf("save %s (%s): %w", node.Path(), locale, err)
	}
	r.documents.Clear()
	return outcomes, nil
}

// cleanupNode retorna um resultado por propriedade do nó, em ordem: true
// quando a propriedade foi (ou, em dry-run, seria) removida.
func (r *Reconciler) cleanupNode(node content.Node, locale string, written []string, dryRun bool) ([]bool, error) {
	r.debugf("# Cleaning up node \"%s\" for locale \"%s\"\n", node.Path(), locale)

	whitelist := QualifiedWhitelist(r.namespaces.Prefix(content.RoleSystemLocalized), locale)
	r.debugf("Whitelisted:\n* %s\n", strings.Join(whitelist, "\n* "))
	r.debugf("Written:\n* %s\n", strings.Join(written, "\n* "))

	keep := make(map[string]struct{}, len(written)+len(whitelist))
	for _, name := range written {
		keep[name] = struct{}{}
	}
	for _, name := range whitelist {
		keep[name] = struct{}{}
	}

	marker := LocaleMarker + locale
	props := node.Properties()
	outcomes := make([]bool, 0, len(props))
	var removed []string

	for _, p := range props {
		if !strings.HasPrefix(p.Name, marker) {
			outcomes = append(outcomes, false)
			continue
		}
		if _, ok := keep[p.Name]; ok {
			outcomes = append(outcomes, false)
			continue
		}

		removed = append(removed, p.Name)
		if !dryRun {
			if err := node.RemoveProperty(p.Name); err != nil {
				return nil, fmt.Errorf("remove %s from %s: %w", p.Name, node.Path(), err)
			}
		}
		outcomes = append(outcomes, true)
	}

	r.debugf("Removed:\n* %s\n", strings.Join(removed, "\n* "))
	return outcomes, nil
}

// debugf acrescenta uma mensagem terminada em quebra de linha ao log de debug.
func (r *Reconciler) debugf(format string, args ...any) {
	if r.debug == nil {
		return
	}
	if _, err := fmt.Fprintf(r.debug, format+"\n", args...); err != nil {
		r.logger.WithError(err).Warn("write debug log")
	}
}

package pipeline

import (
	stderrors "errors"
	"log/slog"

	"github.com/vango-dev/livecoll/internal/config"
	"github.com/vango-dev/livecoll/internal/errors"
	"github.com/vango-dev/livecoll/pkg/observable"
	"github.com/vango-dev/livecoll/pkg/protocol"
)

// Sentinel errors. Errors returned by a Pipeline are coded
// *errors.LivecollError values wrapping one of these.
var (
	ErrUnknownCollection = stderrors.New("pipeline: unknown collection")
	ErrKindMismatch      = stderrors.New("pipeline: operation not supported by collection kind")
	ErrInvalidOp         = stderrors.New("pipeline: invalid operation")
)

// Pipeline is a graph of named live collections.
type Pipeline struct {
	name   string
	nodes  map[string]*node
	order  []string
	logger *slog.Logger

	// applied counts applier invocations per collection.
	applied map[string]int
}

// node is one named collection. Exactly one of list and m is set.
type node struct {
	name string
	kind string
	list observable.List[any]
	m    observable.Map[string, any]

	// Set on the kinds that accept operations.
	array  *observable.Array[any]
	dict   *observable.Dict[string, any]
	filter *observable.FilteredList[any]
	apply  *observable.ApplyMap[string, any]
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used by the log applier and for operation
// tracing. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// Build validates cfg and constructs its collections in declaration order.
func Build(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		name:    cfg.Name,
		nodes:   make(map[string]*node, len(cfg.Collections)),
		logger:  slog.Default(),
		applied: make(map[string]int),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("pipeline", cfg.Name)

	for _, cc := range cfg.Collections {
		n, err := p.build(cc)
		if err != nil {
			return nil, err
		}
		p.nodes[n.name] = n
		p.order = append(p.order, n.name)
	}

	// Appliers only run while their map is subscribed; keep apply maps
	// attached for the lifetime of the pipeline.
	for _, name := range p.order {
		if n := p.nodes[name]; n.apply != nil {
			n.apply.Subscribe(&observable.MapHandlerFuncs[string, any]{})
		}
	}
	return p, nil
}

func (p *Pipeline) build(cc config.CollectionConfig) (*node, error) {
	n := &node{name: cc.Name, kind: cc.Kind}

	switch cc.Kind {
	case config.KindList:
		n.array = observable.NewArray(cc.Items...)
		n.list = n.array

	case config.KindMap:
		n.dict = observable.NewDict[string, any]()
		for _, e := range cc.Entries {
			n.dict.Set(e.Key, e.Value, nil)
		}
		n.m = n.dict

	case config.KindMapList:
		fn, err := LookupTransform(cc.Transform)
		if err != nil {
			return nil, p.annotate(err, cc.Name)
		}
		n.list = observable.MapItems[any, any](p.nodes[cc.Source].list, fn)

	case config.KindFilter:
		pred, err := LookupPredicate(cc.Predicate)
		if err != nil {
			return nil, p.annotate(err, cc.Name)
		}
		n.filter = observable.Filter[any](p.nodes[cc.Source].list, pred)
		n.list = n.filter

	case config.KindSorted:
		compare, err := LookupComparator(cc.Compare)
		if err != nil {
			return nil, p.annotate(err, cc.Name)
		}
		n.list = observable.Sort[string, any](p.nodes[cc.Source].m, compare)

	case config.KindMapMap:
		fn, err := LookupTransform(cc.Transform)
		if err != nil {
			return nil, p.annotate(err, cc.Name)
		}
		n.m = observable.MapValues[string, any, any](p.nodes[cc.Source].m, fn)

	case config.KindJoin:
		sources := make([]observable.Map[string, any], len(cc.Sources))
		for i, name := range cc.Sources {
			sources[i] = p.nodes[name].m
		}
		n.m = observable.Join(sources...)

	case config.KindApply:
		fn, err := p.lookupApplier(cc.Apply, cc.Name)
		if err != nil {
			return nil, p.annotate(err, cc.Name)
		}
		n.apply = observable.NewApplyMap[string, any](p.nodes[cc.Source].m, fn)
		n.m = n.apply
	}
	return n, nil
}

// annotate adds the collection name to a lookup error.
func (p *Pipeline) annotate(err error, collection string) error {
	var lcErr *errors.LivecollError
	if stderrors.As(err, &lcErr) {
		return lcErr.WithDetailf("Collection %q: %s", collection, lcErr.Detail)
	}
	return err
}

// lookupApplier resolves an applier name for the given collection. The
// empty name installs no applier.
func (p *Pipeline) lookupApplier(spec, collection string) (func(string, any, any), error) {
	switch spec {
	case "":
		return nil, nil
	case "log":
		logger := p.logger.With("collection", collection)
		return func(key string, value, params any) {
			logger.Info("apply", "key", key, "value", value, "params", params)
		}, nil
	case "count":
		return func(string, any, any) {
			p.applied[collection]++
		}, nil
	}
	return nil, errors.New("E109").WithDetailf("Unknown applier %q", spec).
		WithSuggestion("Use log or count")
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string {
	return p.name
}

// Names returns the collection names in declaration order.
func (p *Pipeline) Names() []string {
	return append([]string(nil), p.order...)
}

// Kind returns the kind of the named collection.
func (p *Pipeline) Kind(name string) (string, bool) {
	n, ok := p.nodes[name]
	if !ok {
		return "", false
	}
	return n.kind, true
}

// Shape returns whether the named collection is a list or a map.
func (p *Pipeline) Shape(name string) (protocol.Shape, bool) {
	n, ok := p.nodes[name]
	if !ok {
		return 0, false
	}
	if n.list != nil {
		return protocol.ShapeList, true
	}
	return protocol.ShapeMap, true
}

// Len returns the current size of the named collection.
func (p *Pipeline) Len(name string) (int, error) {
	n, err := p.node(name)
	if err != nil {
		return 0, err
	}
	if n.list != nil {
		return n.list.Len(), nil
	}
	return n.m.Len(), nil
}

// Applied returns how many times the count applier of the named collection
// has run.
func (p *Pipeline) Applied(name string) int {
	return p.applied[name]
}

func (p *Pipeline) node(name string) (*node, error) {
	n, ok := p.nodes[name]
	if !ok {
		return nil, errors.New("E120").WithDetailf("No collection named %q", name).Wrap(ErrUnknownCollection)
	}
	return n, nil
}

// Watch subscribes sink to the named collection. Events are numbered from
// 1 per call. The returned function unsubscribes.
func (p *Pipeline) Watch(name string, sink protocol.Sink) (func(), error) {
	n, err := p.node(name)
	if err != nil {
		return nil, err
	}
	if n.list != nil {
		return n.list.Subscribe(protocol.NewListSink[any](name, sink)), nil
	}
	return n.m.Subscribe(protocol.NewMapSink[string, any](name, sink)), nil
}

// Snapshot captures the current content of the named collection with a
// zero sequence number.
func (p *Pipeline) Snapshot(name string) (*protocol.Snapshot, error) {
	n, err := p.node(name)
	if err != nil {
		return nil, err
	}
	if n.list != nil {
		return protocol.ListSnapshot(name, 0, n.list), nil
	}
	return protocol.MapSnapshot(name, 0, n.m), nil
}

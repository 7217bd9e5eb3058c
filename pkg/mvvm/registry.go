package mvvm

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/vango-dev/viewmodel/pkg/mvvm"

// Model is a view-model updated in place from snapshots of type S.
type Model[S any] interface {
	Update(snapshot S)
}

// Creator constructs a view-model from its first snapshot. It must be pure:
// no I/O and no notifications.
type Creator[S, VM any] func(snapshot S) VM

// RegistryOption configures a Registry.
type RegistryOption func(*registryConfig)

type registryConfig struct {
	kind    string
	tracer  trace.Tracer
	metrics *Metrics
	logger  *slog.Logger
}

// WithKind names the entity kind for spans, metrics and logs.
func WithKind(kind string) RegistryOption {
	return func(c *registryConfig) {
		c.kind = kind
	}
}

// WithTracer sets the tracer used by Apply.
// Default: the global OpenTelemetry tracer provider.
func WithTracer(tracer trace.Tracer) RegistryOption {
	return func(c *registryConfig) {
		c.tracer = tracer
	}
}

// WithRegistryMetrics records the number of held models.
func WithRegistryMetrics(m *Metrics) RegistryOption {
	return func(c *registryConfig) {
		c.metrics = m
	}
}

// WithRegistryLogger sets the registry logger.
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(c *registryConfig) {
		c.logger = logger
	}
}

// Registry holds one view-model per identity. The first snapshot for an
// identity goes through the Creator; later snapshots update the same
// instance, so references handed out earlier stay live.
type Registry[K comparable, S any, VM Model[S]] struct {
	mu    sync.RWMutex
	items map[K]VM

	key    func(S) K
	create Creator[S, VM]

	kind    string
	tracer  trace.Tracer
	metrics *Metrics
	logger  *slog.Logger
}

// NewRegistry creates a registry. key extracts the identity from a snapshot.
func NewRegistry[K comparable, S any, VM Model[S]](key func(S) K, create Creator[S, VM], opts ...RegistryOption) *Registry[K, S, VM] {
	config := registryConfig{kind: "model"}
	for _, opt := range opts {
		opt(&config)
	}
	if config.tracer == nil {
		config.tracer = otel.Tracer(tracerName)
	}
	if config.logger == nil {
		config.logger = slog.Default()
	}

	return &Registry[K, S, VM]{
		items:   make(map[K]VM),
		key:     key,
		create:  create,
		kind:    config.kind,
		tracer:  config.tracer,
		metrics: config.metrics,
		logger:  config.logger.With("kind", config.kind),
	}
}

// Get returns the view-model for k.
func (r *Registry[K, S, VM]) Get(k K) (VM, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	vm, ok := r.items[k]
	return vm, ok
}

// GetOrCreate returns the view-model for the snapshot's identity, creating
// it from the snapshot when absent. An existing model is not updated.
func (r *Registry[K, S, VM]) GetOrCreate(snapshot S) VM {
	vm, _ := r.getOrCreate(snapshot)
	return vm
}

// Apply routes a snapshot to its view-model: create on first sight, Update
// afterwards. It reports whether the model was created.
func (r *Registry[K, S, VM]) Apply(ctx context.Context, snapshot S) (VM, bool) {
	k := r.key(snapshot)
	_, span := r.tracer.Start(ctx, "mvvm.Registry.Apply",
		trace.WithAttributes(
			attribute.String("mvvm.kind", r.kind),
			attribute.String("mvvm.key", fmt.Sprint(k)),
		))
	defer span.End()

	vm, created := r.getOrCreate(snapshot)
	if !created {
		vm.Update(snapshot)
	}
	span.SetAttributes(attribute.Bool("mvvm.created", created))
	return vm, created
}

// Evict drops the view-model for k. Holders of the instance keep it, but it
// no longer receives snapshots through this registry.
func (r *Registry[K, S, VM]) Evict(k K) bool {
	r.mu.Lock()
	_, ok := r.items[k]
	delete(r.items, k)
	n := len(r.items)
	r.mu.Unlock()

	if ok {
		r.metrics.setModels(r.kind, n)
		r.logger.Debug("model evicted", "key", k)
	}
	return ok
}

// Len returns the number of held view-models.
func (r *Registry[K, S, VM]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Keys returns the held identities in unspecified order.
func (r *Registry[K, S, VM]) Keys() []K {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]K, 0, len(r.items))
	for k := range r.items {
		out = append(out, k)
	}
	return out
}

func (r *Registry[K, S, VM]) getOrCreate(snapshot S) (VM, bool) {
	k := r.key(snapshot)

	r.mu.RLock()
	vm, ok := r.items[k]
	r.mu.RUnlock()
	if ok {
		return vm, false
	}

	r.mu.Lock()
	// Double-checked: another goroutine may have created it meanwhile.
	if vm, ok = r.items[k]; ok {
		r.mu.Unlock()
		return vm, false
	}
	vm = r.create(snapshot)
	r.items[k] = vm
	n := len(r.items)
	r.mu.Unlock()

	r.metrics.setModels(r.kind, n)
	r.logger.Debug("model created", "key", k)
	return vm, true
}

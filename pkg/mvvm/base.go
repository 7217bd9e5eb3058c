package mvvm

import (
	"fmt"
	"log/slog"
)

// FieldKey builds the diagnostic key "<kind>.<id>.<field>".
func FieldKey(kind string, id any, field string) string {
	return fmt.Sprintf("%s.%v.%s", kind, id, field)
}

// Changed ORs change results. Every argument is evaluated before the call,
// so each container has been offered its new value even when an earlier
// one already changed.
func Changed(results ...bool) bool {
	changed := false
	for _, r := range results {
		changed = changed || r
	}
	return changed
}

// ModelOption configures a BaseValueModel.
type ModelOption func(*modelConfig)

type modelConfig struct {
	metrics *Metrics
	logger  *slog.Logger
}

// WithModelMetrics records updates and deliveries.
func WithModelMetrics(m *Metrics) ModelOption {
	return func(c *modelConfig) {
		c.metrics = m
	}
}

// WithModelLogger sets the logger for debug output.
func WithModelLogger(logger *slog.Logger) ModelOption {
	return func(c *modelConfig) {
		c.logger = logger
	}
}

// BaseValueModel is the aggregate machinery shared by concrete view-models.
// A view-model keeps one as a field, binds it once with Init and routes its
// Update through Commit.
//
// VM is the concrete view-model type handed to listeners.
type BaseValueModel[VM any] struct {
	kind       string
	owner      VM
	dispatcher Dispatcher
	fields     []Field
	listeners  Listeners[VM]

	metrics *Metrics
	logger  *slog.Logger
}

// Init binds the aggregate to its owner. kind names the entity for
// diagnostics and metrics, fields lists every tracked container.
func (b *BaseValueModel[VM]) Init(kind string, owner VM, d Dispatcher, fields []Field, opts ...ModelOption) {
	var config modelConfig
	for _, opt := range opts {
		opt(&config)
	}
	if config.logger == nil {
		config.logger = slog.Default()
	}

	b.kind = kind
	b.owner = owner
	b.dispatcher = d
	b.fields = fields
	b.metrics = config.metrics
	b.logger = config.logger
}

// Kind returns the entity kind.
func (b *BaseValueModel[VM]) Kind() string {
	return b.kind
}

// Fields returns the tracked containers in declaration order.
func (b *BaseValueModel[VM]) Fields() []Field {
	out := make([]Field, len(b.fields))
	copy(out, b.fields)
	return out
}

// Subscribe registers l and calls it once with the owner on the calling
// goroutine. Subscribing a registered listener again is a no-op.
func (b *BaseValueModel[VM]) Subscribe(l ModelChangedListener[VM]) error {
	return b.listeners.subscribe(l, true, b.owner)
}

// SubscribeNotify is Subscribe with control over the initial call.
func (b *BaseValueModel[VM]) SubscribeNotify(l ModelChangedListener[VM], notify bool) error {
	return b.listeners.subscribe(l, notify, b.owner)
}

// Unsubscribe removes l if registered.
func (b *BaseValueModel[VM]) Unsubscribe(l ModelChangedListener[VM]) {
	b.listeners.Remove(l)
}

// Listeners returns the number of registered listeners.
func (b *BaseValueModel[VM]) Listeners() int {
	return b.listeners.Len()
}

// Commit finishes an update: when changed is true exactly one notification
// is scheduled, otherwise nothing happens.
func (b *BaseValueModel[VM]) Commit(changed bool) {
	b.metrics.recordUpdate(b.kind, changed)
	if changed {
		b.NotifyChange()
	}
}

// NotifyChange posts one delivery task. On the dispatcher goroutine the task
// flushes pending container notifications, then calls every listener
// registered at that moment with the owner.
func (b *BaseValueModel[VM]) NotifyChange() {
	b.metrics.notificationScheduled(b.kind)
	b.dispatcher.Post(func() {
		for _, f := range b.fields {
			f.flush()
		}
		n := b.listeners.deliver(b.owner)
		b.metrics.delivered(b.kind, n)
		b.logger.Debug("model changed", "kind", b.kind, "listeners", n)
	})
}

package mvvmtest

import (
	"sync"
	"testing"
)

// ManualDispatcher is a Dispatcher whose tasks run only when the test calls
// RunNext or Drain, on the test goroutine.
type ManualDispatcher struct {
	mu    sync.Mutex
	tasks []func()
}

// NewManualDispatcher creates an empty dispatcher.
func NewManualDispatcher() *ManualDispatcher {
	return &ManualDispatcher{}
}

// Post queues task.
func (d *ManualDispatcher) Post(task func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tasks = append(d.tasks, task)
}

// Len returns the number of queued tasks.
func (d *ManualDispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.tasks)
}

// RunNext runs the oldest queued task. It reports false when none is queued.
func (d *ManualDispatcher) RunNext() bool {
	d.mu.Lock()
	if len(d.tasks) == 0 {
		d.mu.Unlock()
		return false
	}
	task := d.tasks[0]
	d.tasks = d.tasks[1:]
	d.mu.Unlock()

	task()
	return true
}

// Drain runs queued tasks, including ones posted while draining, until the
// queue is empty. It returns how many ran.
func (d *ManualDispatcher) Drain() int {
	n := 0
	for d.RunNext() {
		n++
	}
	return n
}

// Recorder is a listener that records every model it is called with.
// Use it through the pointer returned by NewRecorder.
type Recorder[T any] struct {
	mu    sync.Mutex
	calls []T
}

// NewRecorder creates a Recorder.
func NewRecorder[T any]() *Recorder[T] {
	return &Recorder[T]{}
}

// OnChanged records model.
func (r *Recorder[T]) OnChanged(model T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, model)
}

// Count returns the number of calls.
func (r *Recorder[T]) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Calls returns a copy of the recorded models.
func (r *Recorder[T]) Calls() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, len(r.calls))
	copy(out, r.calls)
	return out
}

// Reset forgets recorded calls.
func (r *Recorder[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// ExpectCalls fails the test if r was not called exactly n times.
func ExpectCalls[T any](t testing.TB, r *Recorder[T], n int) {
	t.Helper()
	if got := r.Count(); got != n {
		t.Errorf("expected %d listener calls, got %d", n, got)
	}
}

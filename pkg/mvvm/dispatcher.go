package mvvm

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// Dispatcher delivers tasks to a single logical UI execution context.
//
// Post must be safe to call from any goroutine, must not run task on the
// caller's goroutine, and must run tasks in the order they were posted.
type Dispatcher interface {
	Post(task func())
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(task func())

// Post calls f(task).
func (f DispatcherFunc) Post(task func()) {
	f(task)
}

// Sync posts fn to d and waits until it has run or ctx is done.
// It must not be called from the dispatcher's own goroutine.
func Sync(ctx context.Context, d Dispatcher, fn func()) error {
	done := make(chan struct{})
	d.Post(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithLoopLogger sets the logger used for recovered panics and slow tasks.
func WithLoopLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) {
		l.logger = logger
	}
}

// WithLoopMetrics records queue depth and task durations.
func WithLoopMetrics(m *Metrics) LoopOption {
	return func(l *Loop) {
		l.metrics = m
	}
}

// WithSlowTaskThreshold logs a warning for tasks running longer than d.
// Zero disables the check.
func WithSlowTaskThreshold(d time.Duration) LoopOption {
	return func(l *Loop) {
		l.slowTask = d
	}
}

// Loop is a Dispatcher backed by an unbounded FIFO queue and a single
// consumer goroutine. The goroutine running Run is the UI goroutine.
//
// Post never blocks and never drops a task while the loop is open. Tasks
// still queued when Close is called run before Run returns.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	closed bool

	// wake has capacity 1; a pending token means the queue may be non-empty.
	wake chan struct{}
	done chan struct{}

	logger   *slog.Logger
	metrics  *Metrics
	slowTask time.Duration
}

// NewLoop creates a loop. Call Run or Start to begin consuming tasks.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Post queues task for the loop goroutine.
func (l *Loop) Post(task func()) {
	if task == nil {
		return
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		l.logger.Warn("loop closed, discarding task")
		return
	}
	l.queue = append(l.queue, task)
	depth := len(l.queue)
	l.mu.Unlock()

	l.metrics.setQueueDepth(depth)

	select {
	case l.wake <- struct{}{}:
	default:
		// A wake-up is already pending.
	}
}

// Pending returns the number of queued tasks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Run consumes tasks on the calling goroutine until Close is called or ctx
// is done. After Close it drains the queue and returns nil. On ctx it closes
// the loop, discards and logs the queued tasks, and returns ctx.Err(); later
// Posts are dropped as after Close.
func (l *Loop) Run(ctx context.Context) error {
	for {
		for {
			task, ok := l.next()
			if !ok {
				break
			}
			l.execute(task)
			if err := ctx.Err(); err != nil {
				return l.abandon(err)
			}
		}

		select {
		case <-l.wake:
		case <-l.done:
			for {
				task, ok := l.next()
				if !ok {
					return nil
				}
				l.execute(task)
			}
		case <-ctx.Done():
			return l.abandon(ctx.Err())
		}
	}
}

// abandon closes the loop after Run stopped on ctx and returns err.
func (l *Loop) abandon(err error) error {
	l.mu.Lock()
	discarded := len(l.queue)
	l.queue = nil
	if !l.closed {
		l.closed = true
		close(l.done)
	}
	l.mu.Unlock()

	l.metrics.setQueueDepth(0)
	if discarded > 0 {
		l.logger.Warn("loop stopped, discarding queued tasks", "tasks", discarded, "error", err)
	}
	return err
}

// Start runs the loop on a new goroutine.
func (l *Loop) Start() {
	go func() {
		_ = l.Run(context.Background())
	}()
}

// Close stops accepting tasks. Queued tasks still run.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	close(l.done)
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	task := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	l.metrics.setQueueDepth(len(l.queue))
	return task, true
}

// execute runs one task with panic recovery, so a failing listener cannot
// stop the loop.
func (l *Loop) execute(task func()) {
	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		l.metrics.observeTask(elapsed)
		if r := recover(); r != nil {
			l.metrics.taskPanicked()
			l.logger.Error("dispatch panic",
				"panic", r,
				"stack", string(debug.Stack()))
			return
		}
		if l.slowTask > 0 && elapsed > l.slowTask {
			l.logger.Warn("slow dispatch task", "elapsed", elapsed)
		}
	}()

	task()
}

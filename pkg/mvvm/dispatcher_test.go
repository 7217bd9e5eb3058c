package mvvm

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func startLoop(t *testing.T, opts ...LoopOption) *Loop {
	t.Helper()
	l := NewLoop(opts...)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = l.Run(context.Background())
	}()
	t.Cleanup(func() {
		l.Close()
		<-done
	})
	return l
}

func TestLoopRunsTasksInOrder(t *testing.T) {
	l := startLoop(t)

	var mu sync.Mutex
	var got []int
	for i := 0; i < 100; i++ {
		i := i
		l.Post(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := Sync(ctx, l, func() {}); err != nil {
		t.Fatalf("sync: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 100 {
		t.Fatalf("expected 100 tasks, got %d", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("task %d ran at position %d", v, i)
		}
	}
}

func TestLoopRunsOnSingleGoroutine(t *testing.T) {
	l := startLoop(t)

	var active, maxActive int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Post(func() {
				mu.Lock()
				active++
				if active > maxActive {
					maxActive = active
				}
				mu.Unlock()
				time.Sleep(time.Millisecond)
				mu.Lock()
				active--
				mu.Unlock()
			})
		}()
	}
	wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := Sync(ctx, l, func() {}); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if maxActive != 1 {
		t.Errorf("tasks overlapped: max active %d", maxActive)
	}
}

func TestLoopRecoversPanics(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(WithRegistry(reg))
	l := startLoop(t, WithLoopLogger(logger), WithLoopMetrics(metrics))

	l.Post(func() { panic("boom") })

	ran := false
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := Sync(ctx, l, func() { ran = true }); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !ran {
		t.Error("loop should keep running after a panic")
	}
	if !strings.Contains(buf.String(), "dispatch panic") {
		t.Errorf("expected panic to be logged, got %q", buf.String())
	}
	if got := testutil.ToFloat64(metrics.taskPanics); got != 1 {
		t.Errorf("expected 1 recorded panic, got %v", got)
	}
}

func TestLoopCloseDrainsQueue(t *testing.T) {
	l := NewLoop()
	count := 0
	for i := 0; i < 10; i++ {
		l.Post(func() { count++ })
	}
	if l.Pending() != 10 {
		t.Errorf("expected 10 pending, got %d", l.Pending())
	}

	l.Close()
	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if count != 10 {
		t.Errorf("queued tasks should run after Close, got %d", count)
	}
}

func TestLoopPostAfterCloseIsDropped(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoop(WithLoopLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	l.Close()
	l.Close()

	l.Post(func() { t.Error("task posted after close must not run") })
	if l.Pending() != 0 {
		t.Errorf("expected nothing queued, got %d", l.Pending())
	}
	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(buf.String(), "loop closed") {
		t.Errorf("expected drop to be logged, got %q", buf.String())
	}
}

func TestLoopRunStopsOnContext(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := l.Run(ctx); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestLoopStoppedByContextRejectsLaterPosts(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoop(WithLoopLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	ctx, cancel := context.WithCancel(context.Background())
	ran := make(chan struct{})
	l.Post(func() {
		close(ran)
		cancel()
	})
	l.Post(func() { t.Error("task queued behind the cancellation must not run") })

	if err := l.Run(ctx); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	<-ran
	if !strings.Contains(buf.String(), "discarding queued tasks") {
		t.Errorf("expected discarded tasks to be logged, got %q", buf.String())
	}

	l.Post(func() { t.Error("task posted after the loop stopped must not run") })
	if l.Pending() != 0 {
		t.Errorf("expected nothing queued after stop, got %d", l.Pending())
	}
	if !strings.Contains(buf.String(), "loop closed") {
		t.Errorf("expected the late post to be logged, got %q", buf.String())
	}

	// Close after a context stop is a no-op.
	l.Close()
}

func TestLoopSlowTaskWarning(t *testing.T) {
	var buf bytes.Buffer
	var mu sync.Mutex
	logger := slog.New(slog.NewTextHandler(&lockedWriter{w: &buf, mu: &mu}, nil))
	l := startLoop(t, WithLoopLogger(logger), WithSlowTaskThreshold(time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := Sync(ctx, l, func() { time.Sleep(5 * time.Millisecond) }); err != nil {
		t.Fatalf("sync: %v", err)
	}
	// The warning is logged after the task returns; wait for the next one.
	if err := Sync(ctx, l, func() {}); err != nil {
		t.Fatalf("sync: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if !strings.Contains(buf.String(), "slow dispatch task") {
		t.Errorf("expected slow task warning, got %q", buf.String())
	}
}

func TestLoopQueueDepthMetric(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(WithRegistry(reg))
	l := NewLoop(WithLoopMetrics(metrics))

	l.Post(func() {})
	l.Post(func() {})
	if got := testutil.ToFloat64(metrics.queueDepth); got != 2 {
		t.Errorf("expected depth 2, got %v", got)
	}

	l.Close()
	_ = l.Run(context.Background())
	if got := testutil.ToFloat64(metrics.queueDepth); got != 0 {
		t.Errorf("expected depth 0 after drain, got %v", got)
	}
}

func TestSyncHonorsContext(t *testing.T) {
	d := DispatcherFunc(func(func()) {}) // never runs anything
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := Sync(ctx, d, func() {}); err != context.DeadlineExceeded {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (w *lockedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}

package inspect

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/viewmodel/pkg/mvvm"
	"github.com/vango-dev/viewmodel/pkg/viewmodel"
)

const (
	writeTimeout       = 10 * time.Second
	unsubscribeTimeout = 2 * time.Second
)

// FrameType identifies a watch frame.
type FrameType string

const (
	// FrameSnapshot is the first frame, sent on subscribe.
	FrameSnapshot FrameType = "snapshot"

	// FrameChanged follows every delivered change notification.
	FrameChanged FrameType = "changed"
)

// Frame is one websocket message on a watch connection.
type Frame struct {
	Type FrameType `json:"type"`

	// Seq counts notifications seen by this connection, starting at 1.
	// Gaps mean frames were dropped.
	Seq uint64 `json:"seq"`

	// Dropped is the number of frames dropped so far.
	Dropped uint64 `json:"dropped,omitempty"`

	Group viewmodel.GroupView `json:"group"`
}

// watcher is the listener a watch connection subscribes with. OnChanged
// runs on the dispatcher goroutine and must not block it.
type watcher struct {
	frames  chan Frame
	seq     uint64 // dispatcher goroutine only
	dropped atomic.Uint64
}

func newWatcher(buffer int) *watcher {
	return &watcher{frames: make(chan Frame, buffer)}
}

func (w *watcher) OnChanged(vm *viewmodel.GroupVM) {
	w.seq++
	typ := FrameChanged
	if w.seq == 1 {
		typ = FrameSnapshot
	}

	f := Frame{
		Type:    typ,
		Seq:     w.seq,
		Dropped: w.dropped.Load(),
		Group:   vm.View(),
	}
	select {
	case w.frames <- f:
	default:
		w.dropped.Add(1)
	}
}

// watchHub tracks open watch connections so Stop can close them.
type watchHub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func newWatchHub() *watchHub {
	return &watchHub{conns: make(map[*websocket.Conn]struct{})}
}

func (h *watchHub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *watchHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
}

func (h *watchHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (h *watchHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		conn.Close()
		delete(h.conns, conn)
	}
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	vm, ok := s.lookup(w, r)
	if !ok {
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		return
	}
	defer conn.Close()

	logger := s.logger.With("watch", uuid.NewString(), "group", vm.ID())

	wt := newWatcher(s.watchBuffer)
	if err := mvvm.Sync(r.Context(), s.dispatcher, func() {
		_ = vm.Subscribe(wt)
	}); err != nil {
		logger.Warn("watch subscribe failed", "error", err)
		return
	}
	s.watchers.add(conn)
	logger.Debug("watch opened", "remote", r.RemoteAddr)

	defer func() {
		s.watchers.remove(conn)
		ctx, cancel := context.WithTimeout(context.Background(), unsubscribeTimeout)
		defer cancel()
		if err := mvvm.Sync(ctx, s.dispatcher, func() { vm.Unsubscribe(wt) }); err != nil {
			logger.Warn("watch unsubscribe failed", "error", err)
		}
		logger.Debug("watch closed", "dropped", wt.dropped.Load())
	}()

	// The client never sends; reading only detects the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case f := <-wt.frames:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(f); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}

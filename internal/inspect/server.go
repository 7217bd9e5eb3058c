package inspect

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/viewmodel/internal/errors"
	"github.com/vango-dev/viewmodel/pkg/entity"
	"github.com/vango-dev/viewmodel/pkg/mvvm"
	"github.com/vango-dev/viewmodel/pkg/viewmodel"
)

// DefaultWatchBuffer is the per-connection frame buffer used when Options
// leaves it unset.
const DefaultWatchBuffer = 16

// Options configures a Server.
type Options struct {
	// Addr is the listen address for Start.
	Addr string

	// Groups is the registry being inspected.
	Groups *viewmodel.GroupRegistry

	// Dispatcher is the loop the view-models post notifications to.
	// Watch subscriptions are made on it.
	Dispatcher mvvm.Dispatcher

	// Gatherer backs /metrics. Nil disables the route.
	Gatherer prometheus.Gatherer

	// WatchBuffer is the number of frames buffered per watch connection.
	WatchBuffer int

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Server is the inspection HTTP server.
type Server struct {
	groups      *viewmodel.GroupRegistry
	dispatcher  mvvm.Dispatcher
	gatherer    prometheus.Gatherer
	watchBuffer int
	logger      *slog.Logger
	addr        string

	upgrader websocket.Upgrader
	watchers *watchHub

	mu         sync.Mutex
	httpServer *http.Server
}

// NewServer creates a server. Call Handler to mount it or Start to listen.
func NewServer(opts Options) *Server {
	if opts.WatchBuffer <= 0 {
		opts.WatchBuffer = DefaultWatchBuffer
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Server{
		groups:      opts.Groups,
		dispatcher:  opts.Dispatcher,
		gatherer:    opts.Gatherer,
		watchBuffer: opts.WatchBuffer,
		logger:      opts.Logger,
		addr:        opts.Addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Debug tooling; served on a local address
			},
		},
		watchers: newWatchHub(),
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/groups", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleApply)
		r.Get("/{id}", s.handleGet)
		r.Delete("/{id}", s.handleEvict)
		r.Get("/{id}/watch", s.handleWatch)
	})
	return r
}

// Start listens on Options.Addr until ctx is done, then shuts down
// gracefully and closes open watch connections.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	s.logger.Info("inspect server listening", "addr", s.addr)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		return nil
	case err := <-errCh:
		s.Stop()
		return err
	}
}

// Stop shuts the server down and closes every watch connection.
func (s *Server) Stop() {
	s.watchers.closeAll()

	s.mu.Lock()
	srv := s.httpServer
	s.httpServer = nil
	s.mu.Unlock()

	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Warn("inspect server shutdown", "error", err)
		}
	}
}

// Watchers returns the number of open watch connections.
func (s *Server) Watchers() int {
	return s.watchers.count()
}

type healthResponse struct {
	Status   string `json:"status"`
	Groups   int    `json:"groups"`
	Watchers int    `json:"watchers"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Groups:   s.groups.Len(),
		Watchers: s.watchers.count(),
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ids := s.groups.Keys()
	slices.Sort(ids)

	views := make([]viewmodel.GroupView, 0, len(ids))
	for _, id := range ids {
		// Evicted between Keys and Get.
		if vm, ok := s.groups.Get(id); ok {
			views = append(views, vm.View())
		}
	}
	writeJSON(w, http.StatusOK, views)
}

// groupDetail is the GET /groups/{id} body.
type groupDetail struct {
	Group     viewmodel.GroupView `json:"group"`
	Fields    map[string]any      `json:"fields"`
	Listeners int                 `json:"listeners"`
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	vm, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, groupDetail{
		Group:     vm.View(),
		Fields:    vm.FieldValues(),
		Listeners: vm.Listeners(),
	})
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	var g entity.Group
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&g); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("E302").WithDetail(err.Error()))
		return
	}

	vm, created := s.groups.Apply(r.Context(), &g)
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	s.logger.Debug("snapshot applied", "group", g.ID, "created", created)
	writeJSON(w, status, vm.View())
}

func (s *Server) handleEvict(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if !s.groups.Evict(id) {
		writeError(w, http.StatusNotFound, unknownGroup(chi.URLParam(r, "id")))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*viewmodel.GroupVM, bool) {
	id, ok := parseID(w, r)
	if !ok {
		return nil, false
	}
	vm, ok := s.groups.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, unknownGroup(chi.URLParam(r, "id")))
		return nil, false
	}
	return vm, true
}

func parseID(w http.ResponseWriter, r *http.Request) (int32, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		writeError(w, http.StatusNotFound, unknownGroup(raw))
		return 0, false
	}
	return int32(id), true
}

func unknownGroup(raw string) *errors.ViewModelError {
	return errors.New("E301").
		WithDetail("No view-model for group " + strconv.Quote(raw)).
		WithSuggestion("GET /groups lists the known ids")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err *errors.ViewModelError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(err.FormatJSON() + "\n"))
}

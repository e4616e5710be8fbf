// Package httpapi exposes the daemon's JSON control surface over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mikey-austin/musicd/internal/player"
	"github.com/mikey-austin/musicd/internal/resolver"
	"github.com/mikey-austin/musicd/pkg/music"
)

// Config configures the HTTP control module.
type Config struct {
	Listen      string
	SearchLimit int
}

// Module serves the control API.
type Module struct {
	log        *zap.Logger
	store      *player.Store
	controller *player.Controller
	resolver   resolver.Resolver
	config     Config
}

// NewModule creates the HTTP control module.
func NewModule(log *zap.Logger, store *player.Store, controller *player.Controller, res resolver.Resolver, cfg Config) *Module {
	if strings.TrimSpace(cfg.Listen) == "" {
		cfg.Listen = "127.0.0.1:5000"
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 5
	}
	return &Module{log: log, store: store, controller: controller, resolver: res, config: cfg}
}

// Run serves until the context is canceled, then shuts down gracefully.
func (m *Module) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              m.config.Listen,
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		m.log.Info("http api listening", zap.String("addr", m.config.Listen))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Handler builds the route table. Exposed separately for tests.
func (m *Module) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /play", m.handlePlay)
	mux.HandleFunc("POST /queue", m.handleQueueAdd)
	mux.HandleFunc("GET /queue", m.handleQueueList)
	mux.HandleFunc("POST /search", m.handleSearch)
	mux.HandleFunc("POST /pause", m.handlePause)
	mux.HandleFunc("POST /resume", m.handleResume)
	mux.HandleFunc("POST /stop", m.handleStop)
	mux.HandleFunc("POST /next", m.handleNext)
	mux.HandleFunc("GET /status", m.handleStatus)
	return mux
}

func (m *Module) handlePlay(w http.ResponseWriter, r *http.Request) {
	query, ok := m.readQuery(w, r)
	if !ok {
		return
	}

	item, err := m.resolver.Resolve(r.Context(), query)
	if err != nil {
		m.resolveError(w, query, err)
		return
	}

	track := m.controller.PlayNow(item)
	m.log.Info("playing", zap.String("title", track.Title), zap.String("url", track.WebpageURL))
	writeJSON(w, http.StatusOK, music.PlayReply{OK: true, Track: &track})
}

func (m *Module) handleQueueAdd(w http.ResponseWriter, r *http.Request) {
	query, ok := m.readQuery(w, r)
	if !ok {
		return
	}

	item, err := m.resolver.Resolve(r.Context(), query)
	if err != nil {
		m.resolveError(w, query, err)
		return
	}

	m.store.EnqueueBack(item)
	m.log.Info("queued", zap.String("title", item.Title), zap.Int("depth", m.store.QueueLen()))
	writeJSON(w, http.StatusOK, music.QueueAddReply{OK: true, Item: &item})
}

func (m *Module) handleQueueList(w http.ResponseWriter, r *http.Request) {
	_, queue, _ := m.store.Snapshot()
	writeJSON(w, http.StatusOK, music.QueueListReply{OK: true, Queue: queue})
}

func (m *Module) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req music.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, music.OKReply{OK: false, Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, music.OKReply{OK: false, Error: "query is required"})
		return
	}
	limit := req.Limit
	if limit <= 0 || limit > m.config.SearchLimit {
		limit = m.config.SearchLimit
	}

	results, err := m.resolver.Search(r.Context(), req.Query, limit)
	if err != nil {
		m.log.Warn("search failed", zap.String("query", req.Query), zap.Error(err))
		writeJSON(w, http.StatusOK, music.SearchReply{OK: false, Error: err.Error(), Results: []music.Item{}})
		return
	}
	if results == nil {
		results = []music.Item{}
	}
	writeJSON(w, http.StatusOK, music.SearchReply{OK: true, Results: results})
}

func (m *Module) handlePause(w http.ResponseWriter, r *http.Request) {
	if err := m.controller.SetPaused(true); err != nil {
		writeJSON(w, http.StatusOK, music.OKReply{OK: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, music.OKReply{OK: true})
}

func (m *Module) handleResume(w http.ResponseWriter, r *http.Request) {
	if err := m.controller.SetPaused(false); err != nil {
		writeJSON(w, http.StatusOK, music.OKReply{OK: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, music.OKReply{OK: true})
}

func (m *Module) handleStop(w http.ResponseWriter, r *http.Request) {
	m.controller.Stop()
	m.log.Info("stopped")
	writeJSON(w, http.StatusOK, music.OKReply{OK: true})
}

func (m *Module) handleNext(w http.ResponseWriter, r *http.Request) {
	item, ok := m.controller.Skip()
	if !ok {
		// Skipping past the last item is a normal outcome; track stays null.
		m.log.Info("skipped to end of queue")
		writeJSON(w, http.StatusOK, music.PlayReply{OK: true})
		return
	}
	m.log.Info("skipped to next", zap.String("title", item.Title))
	writeJSON(w, http.StatusOK, music.PlayReply{OK: true, Track: &item})
}

func (m *Module) handleStatus(w http.ResponseWriter, r *http.Request) {
	current, queue, history := m.store.Snapshot()
	writeJSON(w, http.StatusOK, music.StatusReply{OK: true, Now: current, Queue: queue, History: history})
}

// readQuery decodes a {"query": ...} body, replying with a 400 on bad input.
func (m *Module) readQuery(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req music.PlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, music.OKReply{OK: false, Error: "invalid request body"})
		return "", false
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeJSON(w, http.StatusBadRequest, music.OKReply{OK: false, Error: "query is required"})
		return "", false
	}
	return query, true
}

func (m *Module) resolveError(w http.ResponseWriter, query string, err error) {
	if errors.Is(err, resolver.ErrNotFound) {
		writeJSON(w, http.StatusOK, music.PlayReply{OK: false, Error: "no results for: " + query})
		return
	}
	m.log.Warn("resolve failed", zap.String("query", query), zap.Error(err))
	writeJSON(w, http.StatusOK, music.PlayReply{OK: false, Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

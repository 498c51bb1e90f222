// Package api provides the observability demo HTTP/WebSocket server: a
// read-only window onto the coordinator's recent decisions and journal,
// not part of the deterministic core.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/kestrel-quant/decisioncore/internal/analysis"
	"github.com/kestrel-quant/decisioncore/internal/eventbus"
	"github.com/kestrel-quant/decisioncore/internal/journal"
	"github.com/kestrel-quant/decisioncore/pkg/types"
)

// Server is the demo observability HTTP/WS server.
type Server struct {
	mu      sync.RWMutex
	logger  *zap.Logger
	config  types.ServerConfig
	router  *mux.Router
	http    *http.Server
	upgrade websocket.Upgrader

	journal *journal.Journal
	bus     *eventbus.Bus
	trades  []analysis.Trade

	clients map[string]*client

	decisionsMu sync.RWMutex
	decisions   []types.PolicyDecisionRecord

	metricDecisions *prometheus.CounterVec
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// NewServer creates a Server bound to journal j and (optionally) bus for
// live streaming.
func NewServer(logger *zap.Logger, config types.ServerConfig, j *journal.Journal, bus *eventbus.Bus) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		logger:  logger.Named("api"),
		config:  config,
		router:  mux.NewRouter(),
		journal: j,
		bus:     bus,
		clients: make(map[string]*client),
		upgrade: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}

	if config.EnableMetrics {
		s.metricDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "decisioncore_decisions_total",
			Help: "Policy decisions by reason.",
		}, []string{"reason"})
		if err := prometheus.Register(s.metricDecisions); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				s.metricDecisions = are.ExistingCollector.(*prometheus.CounterVec)
			}
		}
	}

	if bus != nil {
		bus.Subscribe(s.broadcastEvent)
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/decisions", s.handleDecisions).Methods(http.MethodGet)
	s.router.HandleFunc("/journal", s.handleJournal).Methods(http.MethodGet)
	s.router.HandleFunc("/analysis/report", s.handleReport).Methods(http.MethodGet)
	if s.config.EnableMetrics {
		s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}
	s.router.HandleFunc(s.config.WebSocketPath, s.handleWebSocket)
}

// Start begins serving HTTP; it blocks until the server stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowCredentials: true,
	}).Handler(s.router)

	s.http = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	s.logger.Info("starting observability server", zap.String("addr", addr))
	return s.http.ListenAndServe()
}

// Stop gracefully shuts the server down, closing all websocket clients.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	for _, c := range s.clients {
		c.conn.Close()
	}
	s.mu.Unlock()

	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// RecordDecisions makes a batch's decisions visible to GET /decisions and
// bumps the per-reason decision counter.
func (s *Server) RecordDecisions(decisions []types.PolicyDecisionRecord) {
	s.decisionsMu.Lock()
	s.decisions = append(s.decisions, decisions...)
	if len(s.decisions) > 1000 {
		s.decisions = s.decisions[len(s.decisions)-1000:]
	}
	s.decisionsMu.Unlock()

	if s.metricDecisions != nil {
		for _, d := range decisions {
			s.metricDecisions.WithLabelValues(string(d.Reason)).Inc()
		}
	}
}

// SetTrades replaces the trade sequence GET /analysis/report is computed
// over.
func (s *Server) SetTrades(trades []analysis.Trade) {
	s.decisionsMu.Lock()
	s.trades = trades
	s.decisionsMu.Unlock()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"status": "healthy"})
}

func (s *Server) handleDecisions(w http.ResponseWriter, r *http.Request) {
	s.decisionsMu.RLock()
	defer s.decisionsMu.RUnlock()

	n := len(s.decisions)
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit < n {
			n = limit
		}
	}
	writeJSON(w, map[string]any{"decisions": s.decisions[len(s.decisions)-n:]})
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	var from uint64
	if fromStr := r.URL.Query().Get("from"); fromStr != "" {
		if parsed, err := strconv.ParseUint(fromStr, 10, 64); err == nil {
			from = parsed
		}
	}

	events, err := s.journal.ReadFrom(from)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"events": events})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	s.decisionsMu.RLock()
	trades := s.trades
	s.decisionsMu.RUnlock()
	writeJSON(w, analysis.Build(trades))
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrade.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, 64)}
	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()

	go s.writePump(c)
}

func (s *Server) writePump(c *client) {
	defer func() {
		s.mu.Lock()
		delete(s.clients, c.id)
		s.mu.Unlock()
		c.conn.Close()
	}()

	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// broadcastEvent fans an eventbus-delivered JournalEvent out to every
// connected websocket client.
func (s *Server) broadcastEvent(evt types.JournalEvent) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.clients {
		select {
		case c.send <- payload:
		default:
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

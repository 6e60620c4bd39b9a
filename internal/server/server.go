package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/zeusync/zeuscene/internal/core/observability/log"
	"github.com/zeusync/zeuscene/internal/editor"
	"github.com/zeusync/zeuscene/internal/export"
)

// Server exposes the editor to renderers and UIs over HTTP and websocket.
type Server struct {
	config Config
	editor *editor.Editor
	hub    *Hub
	http   *http.Server
	logger log.Log

	running int32 // atomic bool
	closed  int32 // atomic bool
}

// Config holds server configuration
type Config struct {
	ListenAddr      string
	MaxMessageSize  int64
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Metadata stamped on exported documents.
	ExportFPS        int
	ExportResolution string
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() Config {
	meta := export.DefaultMetadata()
	return Config{
		ListenAddr:       "127.0.0.1:8080",
		MaxMessageSize:   1024 * 1024, // 1MB
		WriteTimeout:     5 * time.Second,
		ShutdownTimeout:  10 * time.Second,
		ExportFPS:        meta.FPS,
		ExportResolution: meta.Resolution,
	}
}

func NewServer(config Config, e *editor.Editor, logger log.Log) *Server {
	if logger == nil {
		logger = log.NewNop()
	}
	s := &Server{
		config: config,
		editor: e,
		hub:    NewHub(e, config, logger),
		logger: logger.With(log.String("component", "server")),
	}
	s.http = &http.Server{
		Addr:              config.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Hub returns the websocket hub; register it as a frame sink.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler routes every endpoint of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.hub.handleWebSocket)
	mux.HandleFunc("/export", s.handleExport)
	mux.HandleFunc("/import", s.handleImport)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		return ErrServerClosed
	}
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return ErrServerRunning
	}
	defer atomic.StoreInt32(&s.running, 0)

	ln, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.config.ListenAddr, err)
	}
	s.logger.Info("Server started", log.String("listen_addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err = <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	return s.Stop(shutdownCtx)
}

// Stop closes websocket clients and shuts the HTTP server down.
func (s *Server) Stop(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return nil
	}
	s.hub.Close()
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("Server stopped")
	return nil
}

func (s *Server) exportMetadata() export.Metadata {
	meta := export.DefaultMetadata()
	if s.config.ExportFPS > 0 {
		meta.FPS = s.config.ExportFPS
	}
	if s.config.ExportResolution != "" {
		meta.Resolution = s.config.ExportResolution
	}
	return meta
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	doc := s.editor.Export(s.exportMetadata())
	var buf bytes.Buffer
	if err := export.Write(&buf, format, doc); err != nil {
		s.logger.Error("Export failed", log.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="animation-%d.%s"`, doc.Metadata.CreatedAt.UnixMilli(), format))
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	body := r.Body
	if s.config.MaxMessageSize > 0 {
		body = http.MaxBytesReader(w, r.Body, s.config.MaxMessageSize)
	}
	doc, err := export.Read(body, format)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.editor.Import(*doc); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{
		"objects":   len(doc.Objects),
		"keyframes": len(doc.Keyframes),
	})
}

type health struct {
	Status   string `json:"status"`
	Clients  int    `json:"clients"`
	Revision uint64 `json:"revision"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, health{
		Status:   "ok",
		Clients:  s.hub.Clients(),
		Revision: s.editor.Revision(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

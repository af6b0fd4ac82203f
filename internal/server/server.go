// Package server exposes the image-resize HTTP API and operational endpoints.
package server

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hellybrine/terraforms/internal/metrics"
	"github.com/hellybrine/terraforms/pkg/cloud"
	"github.com/hellybrine/terraforms/pkg/resize"
)

// Config tunes the resize endpoint.
type Config struct {
	MaxWidth    int
	MaxHeight   int
	MaxBodySize int64
}

// Server handles image resize uploads plus health and metrics endpoints.
type Server struct {
	store   cloud.ObjectStore
	cfg     Config
	metrics *metrics.Metrics
	mux     *http.ServeMux
	logger  *slog.Logger
}

// NewServer creates the HTTP server. Metrics may be nil to disable the
// /metrics endpoint.
func NewServer(store cloud.ObjectStore, cfg Config, m *metrics.Metrics, logger *slog.Logger) *Server {
	if cfg.MaxBodySize == 0 {
		cfg.MaxBodySize = 10 * 1024 * 1024
	}
	s := &Server{
		store:   store,
		cfg:     cfg,
		metrics: m,
		mux:     http.NewServeMux(),
		logger:  logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("POST /resize", s.handleResize)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))
	}
}

// Handler returns the HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "image-resizer",
	})
}

type resizeResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message,omitempty"`
	ResizedURL  string `json:"resized_url,omitempty"`
	Filename    string `json:"filename,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Error       string `json:"error,omitempty"`
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "ok"
	defer func() {
		if s.metrics != nil {
			s.metrics.ResizeRequestsTotal.WithLabelValues(status).Inc()
			s.metrics.ResizeDuration.Observe(time.Since(start).Seconds())
		}
	}()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodySize))
	if err != nil {
		status = "error"
		writeJSON(w, http.StatusBadRequest, resizeResponse{Error: "request body too large or unreadable"})
		return
	}
	if len(body) == 0 {
		status = "error"
		writeJSON(w, http.StatusBadRequest, resizeResponse{Error: "No image data provided in request body"})
		return
	}

	imageData, err := decodeBody(string(body))
	if err != nil {
		status = "error"
		writeJSON(w, http.StatusBadRequest, resizeResponse{Error: "invalid base64 image data"})
		return
	}

	width, err := queryInt(r, "width")
	if err != nil {
		status = "error"
		writeJSON(w, http.StatusBadRequest, resizeResponse{Error: "invalid width parameter"})
		return
	}
	height, err := queryInt(r, "height")
	if err != nil {
		status = "error"
		writeJSON(w, http.StatusBadRequest, resizeResponse{Error: "invalid height parameter"})
		return
	}

	result, err := resize.Resize(imageData, width, height, s.cfg.MaxWidth, s.cfg.MaxHeight)
	if err != nil {
		status = "error"
		s.logger.Error("resize image", "error", err)
		writeJSON(w, http.StatusInternalServerError, resizeResponse{Error: err.Error()})
		return
	}

	filename := r.URL.Query().Get("filename")
	if filename == "" {
		filename = "resized-image.jpg"
	}
	key := uuid.New().String() + "." + extension(filename)

	url, err := s.store.Put(r.Context(), key, result.Data, result.ContentType)
	if err != nil {
		status = "error"
		s.logger.Error("upload resized image", "key", key, "error", err)
		writeJSON(w, http.StatusInternalServerError, resizeResponse{Error: err.Error()})
		return
	}

	s.logger.Info("image resized",
		"key", key,
		"width", result.Width,
		"height", result.Height,
		"bytes", len(result.Data),
	)
	writeJSON(w, http.StatusOK, resizeResponse{
		Success:     true,
		Message:     "Image resized successfully",
		ResizedURL:  url,
		Filename:    key,
		ContentType: result.ContentType,
	})
}

// decodeBody handles raw base64 with or without a data-URL prefix.
func decodeBody(body string) ([]byte, error) {
	if strings.HasPrefix(body, "data:") {
		_, after, found := strings.Cut(body, ",")
		if !found {
			return nil, fmt.Errorf("malformed data URL")
		}
		body = after
	}
	return base64.StdEncoding.DecodeString(strings.TrimSpace(body))
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return v, nil
}

func extension(filename string) string {
	if i := strings.LastIndex(filename, "."); i >= 0 && i < len(filename)-1 {
		return filename[i+1:]
	}
	return "jpg"
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

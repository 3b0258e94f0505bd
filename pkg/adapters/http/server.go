package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/aretw0/portscope"
	"github.com/aretw0/portscope/internal/logging"
	"github.com/aretw0/portscope/pkg/domain"
	"github.com/aretw0/portscope/pkg/session"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed openapi.yaml
var specYAML []byte

// Inspector is the inspection surface served over HTTP.
type Inspector interface {
	ListPorts(ctx context.Context, node string) ([]string, error)
	Extract(ctx context.Context, node, port string) (*domain.ExtractionResult, error)
	CreateMarkers(ctx context.Context, values []domain.Value, plugType string) ([]string, error)
}

// Server holds the handlers' dependencies.
type Server struct {
	Inspector Inspector
	Sessions  *session.Manager
	Streams   *StreamManager

	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithSessions mounts the /sessions routes.
func WithSessions(m *session.Manager) Option {
	return func(s *Server) {
		s.Sessions = m
	}
}

// WithGatherer serves g at /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the logger for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

var loadSpec = sync.OnceValues(func() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(specYAML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI spec: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI spec: %w", err)
	}
	return doc, nil
})

// Spec returns the parsed and validated API description.
func Spec() (*openapi3.T, error) {
	return loadSpec()
}

// NewHandler creates the HTTP handler for an inspector.
func NewHandler(insp Inspector, opts ...Option) http.Handler {
	s := &Server{
		Inspector: insp,
		Streams:   NewStreamManager(),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(specYAML)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)

	r.Get("/nodes/{node}/ports", s.ListPorts)
	r.Get("/nodes/{node}/ports/{port}", s.ExtractPort)
	r.Post("/markers", s.CreateMarkers)

	if s.Sessions != nil {
		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", s.ListSessions)
			r.Post("/", s.CreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.GetSession)
				r.Delete("/", s.DeleteSession)
				r.Put("/port", s.SelectPort)
				r.Post("/refresh", s.RefreshSession)
				r.Get("/rows/{row}", s.GetRow)
				r.Post("/markers", s.CreateSessionMarkers)
				r.Get("/events", s.SubscribeSession)
			})
		})
	}

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Portscope API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNodeNotFound), errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrMarkerUnsupported), errors.Is(err, domain.ErrRowOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoSelection):
		return http.StatusConflict
	case errors.Is(err, domain.ErrHost), errors.Is(err, domain.ErrEvaluation), errors.Is(err, domain.ErrInconsistentShape):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err, "status", status)
	} else {
		s.logger.Warn(op+" rejected", "err", err, "status", status)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) badRequest(w http.ResponseWriter, op string, err error) {
	s.logger.Warn(op+": invalid request body", "err", err)
	s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := Spec(); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "portscope-http",
		"version":     strings.TrimSpace(portscope.Version),
		"api_version": apiVersion,
	})
}

// ListPorts handles GET /nodes/{node}/ports.
func (s *Server) ListPorts(w http.ResponseWriter, r *http.Request) {
	node := chi.URLParam(r, "node")
	names, err := s.Inspector.ListPorts(r.Context(), node)
	if err != nil {
		s.writeError(w, "ListPorts", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"node": node, "ports": names})
}

// ExtractPort handles GET /nodes/{node}/ports/{port}. Absent data is 204.
func (s *Server) ExtractPort(w http.ResponseWriter, r *http.Request) {
	node, port := chi.URLParam(r, "node"), chi.URLParam(r, "port")
	result, err := s.Inspector.Extract(r.Context(), node, port)
	if err != nil {
		s.writeError(w, "ExtractPort", err)
		return
	}
	if result == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

type markersRequest struct {
	PlugType string         `json:"plugType"`
	Values   []domain.Value `json:"values"`
}

// CreateMarkers handles POST /markers.
func (s *Server) CreateMarkers(w http.ResponseWriter, r *http.Request) {
	var body markersRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.badRequest(w, "CreateMarkers", err)
		return
	}
	names, err := s.Inspector.CreateMarkers(r.Context(), body.Values, body.PlugType)
	if err != nil {
		s.writeError(w, "CreateMarkers", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"markers": nonNil(names)})
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.writeError(w, "ListSessions", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"sessions": nonNil(ids)})
}

// CreateSession handles POST /sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Node string `json:"node"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Node == "" {
		if err == nil {
			err = errors.New("node is required")
		}
		s.badRequest(w, "CreateSession", err)
		return
	}
	sess, names, err := s.Sessions.Create(r.Context(), body.Node)
	if err != nil {
		s.writeError(w, "CreateSession", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"session": sess, "ports": names})
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, "GetSession", err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.writeError(w, "DeleteSession", err)
		return
	}
	s.Streams.Close(id)
	w.WriteHeader(http.StatusNoContent)
}

// SelectPort handles PUT /sessions/{id}/port.
func (s *Server) SelectPort(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Port string `json:"port"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Port == "" {
		if err == nil {
			err = errors.New("port is required")
		}
		s.badRequest(w, "SelectPort", err)
		return
	}
	sess, err := s.Sessions.SelectPort(r.Context(), chi.URLParam(r, "id"), body.Port)
	if err != nil {
		s.writeError(w, "SelectPort", err)
		return
	}
	s.broadcast(sess)
	s.writeJSON(w, http.StatusOK, sess)
}

// RefreshSession handles POST /sessions/{id}/refresh.
func (s *Server) RefreshSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Refresh(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, "RefreshSession", err)
		return
	}
	s.broadcast(sess)
	s.writeJSON(w, http.StatusOK, sess)
}

// GetRow handles GET /sessions/{id}/rows/{row}.
func (s *Server) GetRow(w http.ResponseWriter, r *http.Request) {
	row, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "row must be an integer"})
		return
	}
	cells, err := s.Sessions.Row(r.Context(), chi.URLParam(r, "id"), row)
	if err != nil {
		s.writeError(w, "GetRow", err)
		return
	}
	s.writeJSON(w, http.StatusOK, cells)
}

// CreateSessionMarkers handles POST /sessions/{id}/markers.
func (s *Server) CreateSessionMarkers(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Cells []domain.CellRef `json:"cells"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.badRequest(w, "CreateSessionMarkers", err)
		return
	}
	names, err := s.Sessions.CreateMarkers(r.Context(), chi.URLParam(r, "id"), body.Cells)
	if err != nil {
		s.writeError(w, "CreateSessionMarkers", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"markers": nonNil(names)})
}

func (s *Server) broadcast(sess *domain.Session) {
	b, err := json.Marshal(sess)
	if err != nil {
		s.logger.Warn("session event encode failed", "session_id", sess.ID, "err", err)
		return
	}
	s.Streams.Broadcast(sess.ID, string(b))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yannickbattail/scadwrap"
	"github.com/yannickbattail/scadwrap/internal/logging"
	"github.com/yannickbattail/scadwrap/pkg/animation"
	"github.com/yannickbattail/scadwrap/pkg/domain"
	"github.com/yannickbattail/scadwrap/pkg/options"
	"github.com/yannickbattail/scadwrap/pkg/ports"
)

// Client is the subset of the orchestrator the server drives.
type Client interface {
	ParameterDefinition(ctx context.Context) (*domain.DefinitionResult, error)
	Image(ctx context.Context, in domain.ParameterInput, img options.ImageOptions) (*domain.SummaryResult, error)
	Animation(ctx context.Context, in domain.ParameterInput, anim options.AnimOptions) (*domain.SummaryResult, error)
	ShardedAnimation(ctx context.Context, in domain.ParameterInput, anim options.AnimOptions, shards int) ([]*domain.SummaryResult, error)
	Export(ctx context.Context, in domain.ParameterInput, format domain.ExportFormat) (*domain.SummaryResult, error)
}

var _ Client = (*scadwrap.Client)(nil)

// ClientFactory returns a client for a model name taken from a request.
type ClientFactory func(model string) (Client, error)

// Config wires the server to its collaborators. Clients is required.
type Config struct {
	Clients  ClientFactory
	Defaults options.Options
	Store    ports.ResultStore   // optional, enables /v1/results
	Stitcher *animation.Stitcher // optional, enables "stitch" on animations
	Streams  *StreamManager      // optional, enables /v1/events
	Gatherer prometheus.Gatherer // defaults to prometheus.DefaultGatherer
	Logger   *slog.Logger
	// ModelsDir is the root parameter files named in requests are resolved
	// against. Defaults to the working directory.
	ModelsDir string
}

// Server exposes the orchestrator over JSON.
type Server struct {
	cfg    Config
	logger *slog.Logger
}

// NewServer validates cfg and fills its defaults.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Clients == nil {
		return nil, fmt.Errorf("%w: client factory is required", domain.ErrInvalidInput)
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	if cfg.ModelsDir == "" {
		cfg.ModelsDir = "."
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Server{cfg: cfg, logger: logger}, nil
}

// NewHandler creates the HTTP handler for cfg.
func NewHandler(cfg Config) (http.Handler, error) {
	s, err := NewServer(cfg)
	if err != nil {
		return nil, err
	}
	return s.Handler(), nil
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.GetHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/formats", s.GetFormats)
		r.Post("/definition", s.PostDefinition)
		r.Post("/image", s.PostImage)
		r.Post("/animation", s.PostAnimation)
		r.Post("/export", s.PostExport)
		r.Get("/results", s.ListResults)
		r.Get("/results/{id}", s.GetResult)
		r.Get("/events", s.SubscribeEvents)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ModelRequest names the model of a request.
type ModelRequest struct {
	Model string `json:"model"`
}

// RenderRequest is the body shared by image, animation and export requests.
type RenderRequest struct {
	Model      string                 `json:"model"`
	Parameters *domain.ParameterInput `json:"parameters,omitempty"`
	Image      *options.ImageOptions  `json:"image,omitempty"`
	Animation  *options.AnimOptions   `json:"animation,omitempty"`
	Shards     int                    `json:"shards,omitempty"`
	Stitch     bool                   `json:"stitch,omitempty"`
	Format     string                 `json:"format,omitempty"`
}

// input returns the requested parameters, or an empty list which lets the
// model defaults apply. A parameter file must lie below root.
func (r RenderRequest) input(root string) (domain.ParameterInput, error) {
	if r.Parameters == nil {
		return domain.ListInput(nil), nil
	}
	return r.Parameters.Rooted(root)
}

// render decodes a render request and resolves its client and parameters.
func (s *Server) render(w http.ResponseWriter, r *http.Request, op string, body *RenderRequest) (Client, domain.ParameterInput, bool) {
	client, ok := s.decode(w, r, body, &body.Model)
	if !ok {
		return nil, domain.ParameterInput{}, false
	}
	in, err := body.input(s.cfg.ModelsDir)
	if err != nil {
		s.fail(w, op, err)
		return nil, domain.ParameterInput{}, false
	}
	return client, in, true
}

// PostDefinition handles POST /v1/definition.
func (s *Server) PostDefinition(w http.ResponseWriter, r *http.Request) {
	var body ModelRequest
	client, ok := s.decode(w, r, &body, &body.Model)
	if !ok {
		return
	}
	res, err := client.ParameterDefinition(r.Context())
	if err != nil {
		s.fail(w, "Definition", err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// PostImage handles POST /v1/image.
func (s *Server) PostImage(w http.ResponseWriter, r *http.Request) {
	var body RenderRequest
	client, in, ok := s.render(w, r, "Image", &body)
	if !ok {
		return
	}
	img := s.cfg.Defaults.Image
	if body.Image != nil {
		img = *body.Image
	}
	res, err := client.Image(r.Context(), in, img)
	if err != nil {
		s.fail(w, "Image", err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// PostAnimation handles POST /v1/animation. With shards > 1 the frames are
// rendered concurrently and every shard result is returned.
func (s *Server) PostAnimation(w http.ResponseWriter, r *http.Request) {
	var body RenderRequest
	client, in, ok := s.render(w, r, "Animation", &body)
	if !ok {
		return
	}
	if body.Stitch && s.cfg.Stitcher == nil {
		s.fail(w, "Animation", fmt.Errorf("%w: stitching is not enabled", domain.ErrInvalidInput))
		return
	}
	anim := s.cfg.Defaults.Animation
	if body.Animation != nil {
		anim = *body.Animation
	}

	var results []*domain.SummaryResult
	if body.Shards > 1 {
		rs, err := client.ShardedAnimation(r.Context(), in, anim, body.Shards)
		if err != nil {
			s.fail(w, "Animation", err)
			return
		}
		results = rs
	} else {
		res, err := client.Animation(r.Context(), in, anim)
		if err != nil {
			s.fail(w, "Animation", err)
			return
		}
		results = []*domain.SummaryResult{res}
	}

	if body.Stitch {
		stitched, err := s.cfg.Stitcher.Stitch(r.Context(), results[0], anim.DelayMs)
		if err != nil {
			s.fail(w, "Animation", err)
			return
		}
		s.writeJSON(w, http.StatusOK, stitched)
		return
	}
	if body.Shards > 1 {
		s.writeJSON(w, http.StatusOK, results)
		return
	}
	s.writeJSON(w, http.StatusOK, results[0])
}

// PostExport handles POST /v1/export.
func (s *Server) PostExport(w http.ResponseWriter, r *http.Request) {
	var body RenderRequest
	client, in, ok := s.render(w, r, "Export", &body)
	if !ok {
		return
	}
	format, err := domain.ParseExportFormat(body.Format)
	if err != nil {
		s.fail(w, "Export", err)
		return
	}
	res, err := client.Export(r.Context(), in, format)
	if err != nil {
		s.fail(w, "Export", err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// FormatInfo describes one export format.
type FormatInfo struct {
	Name      domain.ExportFormat `json:"name"`
	Family    domain.FormatFamily `json:"family"`
	Extension string              `json:"extension"`
}

// GetFormats handles GET /v1/formats. Internal formats are not listed.
func (s *Server) GetFormats(w http.ResponseWriter, r *http.Request) {
	var formats []FormatInfo
	for _, f := range domain.Formats() {
		if f.Internal() {
			continue
		}
		formats = append(formats, FormatInfo{Name: f, Family: f.Family(), Extension: f.Extension()})
	}
	s.writeJSON(w, http.StatusOK, formats)
}

// ListResults handles GET /v1/results.
func (s *Server) ListResults(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Store == nil {
		http.Error(w, "Result store not configured", http.StatusNotFound)
		return
	}
	ids, err := s.cfg.Store.List(r.Context())
	if err != nil {
		s.fail(w, "ListResults", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"ids": ids})
}

// GetResult handles GET /v1/results/{id}.
func (s *Server) GetResult(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Store == nil {
		http.Error(w, "Result store not configured", http.StatusNotFound)
		return
	}
	rec, err := s.cfg.Store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "GetResult", err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

// GetHealth handles GET /healthz.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": strings.TrimSpace(scadwrap.Version)})
}

// decode reads the body into v and resolves the client for *model.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any, model *string) (Client, bool) {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Invalid request body", "path", r.URL.Path, "err", err)
		return nil, false
	}
	if strings.TrimSpace(*model) == "" {
		http.Error(w, "model is required", http.StatusBadRequest)
		return nil, false
	}
	client, err := s.cfg.Clients(*model)
	if err != nil {
		s.fail(w, "Resolve", err)
		return nil, false
	}
	return client, true
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Warn(op+" rejected", "err", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// StatusFor maps orchestrator errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrResultNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrMissingOutput), errors.Is(err, domain.ErrMalformedOutput):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}

// ResolveModel joins name to root and rejects names escaping it.
func ResolveModel(root, name string) (string, error) {
	path, err := domain.ResolveUnder(root, name)
	if err != nil {
		return "", fmt.Errorf("model: %w", err)
	}
	return path, nil
}

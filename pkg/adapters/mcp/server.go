package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/yannickbattail/scadwrap"
	"github.com/yannickbattail/scadwrap/pkg/domain"
	"github.com/yannickbattail/scadwrap/pkg/options"
)

// FormatsURI is the resource listing the export formats.
const FormatsURI = "scadwrap://formats"

// Client is the subset of the orchestrator exposed as tools.
type Client interface {
	ParameterDefinition(ctx context.Context) (*domain.DefinitionResult, error)
	Image(ctx context.Context, in domain.ParameterInput, img options.ImageOptions) (*domain.SummaryResult, error)
	Animation(ctx context.Context, in domain.ParameterInput, anim options.AnimOptions) (*domain.SummaryResult, error)
	Export(ctx context.Context, in domain.ParameterInput, format domain.ExportFormat) (*domain.SummaryResult, error)
}

var _ Client = (*scadwrap.Client)(nil)

// ClientFactory returns a client for the model named in a tool call.
type ClientFactory func(model string) (Client, error)

// FormatInfo describes one export format.
type FormatInfo struct {
	Name      domain.ExportFormat `json:"name" jsonschema_description:"Value to pass as format"`
	Family    domain.FormatFamily `json:"family" jsonschema_description:"3d or 2d"`
	Extension string              `json:"extension" jsonschema_description:"Extension of the produced file"`
}

// FormatList is the structured output of list_export_formats.
type FormatList struct {
	Formats []FormatInfo `json:"formats"`
}

// Server exposes the orchestrator as an MCP server.
type Server struct {
	clients   ClientFactory
	defaults  options.Options
	modelsDir string
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// ServerOption configures NewServer.
type ServerOption func(*Server)

// WithModelsDir sets the root parameter files named in calls are resolved
// against. Defaults to the working directory.
func WithModelsDir(dir string) ServerOption {
	return func(s *Server) {
		s.modelsDir = dir
	}
}

// NewServer creates a new MCP Server instance. defaults supplies the image
// and animation options when a call does not override them.
func NewServer(clients ClientFactory, defaults options.Options, logger *slog.Logger, opts ...ServerOption) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		clients:   clients,
		defaults:  defaults,
		modelsDir: ".",
		logger:    logger,
		mcpServer: server.NewMCPServer("scadwrap-mcp", strings.TrimSpace(scadwrap.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

const parametersHelp = `Parameters as JSON (optional). Either a key/value list ` +
	`[{"parameter":"size","value":"20"}], {"parameterFile":"p.json","parameterName":"group"} ` +
	`or {"parameterSet":{...},"parameterName":"group"}.`

func (s *Server) registerTools() {
	// TOOL: get_parameter_definition
	definitionTool := mcp.NewTool("get_parameter_definition",
		mcp.WithDescription("Extract the customizer parameters declared by a model."),
		mcp.WithString("model", mcp.Required(), mcp.Description("Model file (.scad)")),
		mcp.WithOutputSchema[domain.DefinitionResult](),
	)
	s.mcpServer.AddTool(definitionTool, mcp.NewStructuredToolHandler(s.handleDefinition))

	// TOOL: generate_image
	imageTool := mcp.NewTool("generate_image",
		mcp.WithDescription("Render a PNG image of a model."),
		mcp.WithString("model", mcp.Required(), mcp.Description("Model file (.scad)")),
		mcp.WithString("parameters", mcp.Description(parametersHelp)),
		mcp.WithString("image", mcp.Description(`Image options as JSON (optional), e.g. {"imgsize":{"width":512,"height":512},"viewall":true}`)),
		mcp.WithOutputSchema[domain.SummaryResult](),
	)
	s.mcpServer.AddTool(imageTool, mcp.NewStructuredToolHandler(s.handleImage))

	// TOOL: generate_animation
	animationTool := mcp.NewTool("generate_animation",
		mcp.WithDescription("Render the frames of an animation. The result file is a glob pattern over the frames."),
		mcp.WithString("model", mcp.Required(), mcp.Description("Model file (.scad)")),
		mcp.WithString("parameters", mcp.Description(parametersHelp)),
		mcp.WithNumber("frames", mcp.Description("Number of frames (optional)")),
		mcp.WithOutputSchema[domain.SummaryResult](),
	)
	s.mcpServer.AddTool(animationTool, mcp.NewStructuredToolHandler(s.handleAnimation))

	// TOOL: export_model
	exportTool := mcp.NewTool("export_model",
		mcp.WithDescription("Export a model to a 3D or 2D file format."),
		mcp.WithString("model", mcp.Required(), mcp.Description("Model file (.scad)")),
		mcp.WithString("format", mcp.Required(), mcp.Description("Export format, see list_export_formats")),
		mcp.WithString("parameters", mcp.Description(parametersHelp)),
		mcp.WithOutputSchema[domain.SummaryResult](),
	)
	s.mcpServer.AddTool(exportTool, mcp.NewStructuredToolHandler(s.handleExport))

	// TOOL: list_export_formats
	s.mcpServer.AddTool(mcp.NewTool("list_export_formats",
		mcp.WithDescription("List the formats accepted by export_model."),
		mcp.WithOutputSchema[FormatList](),
	), mcp.NewStructuredToolHandler(s.handleFormats))
}

// Handler methods for structured tools

func (s *Server) handleDefinition(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.DefinitionResult, error) {
	client, err := s.client(args)
	if err != nil {
		return domain.DefinitionResult{}, err
	}
	res, err := client.ParameterDefinition(ctx)
	if err != nil {
		return domain.DefinitionResult{}, fmt.Errorf("parameter definition failed: %w", err)
	}
	return *res, nil
}

func (s *Server) handleImage(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.SummaryResult, error) {
	client, in, err := s.prepare(args)
	if err != nil {
		return domain.SummaryResult{}, err
	}
	img := s.defaults.Image
	if raw, ok := args["image"].(string); ok && raw != "" {
		img = options.ImageOptions{}
		if err := json.Unmarshal([]byte(raw), &img); err != nil {
			return domain.SummaryResult{}, fmt.Errorf("invalid image options: %w", err)
		}
	}
	res, err := client.Image(ctx, in, img)
	if err != nil {
		return domain.SummaryResult{}, fmt.Errorf("image failed: %w", err)
	}
	return *res, nil
}

func (s *Server) handleAnimation(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.SummaryResult, error) {
	client, in, err := s.prepare(args)
	if err != nil {
		return domain.SummaryResult{}, err
	}
	anim := s.defaults.Animation
	if frames, ok := args["frames"].(float64); ok {
		anim.Frames = int(frames)
	}
	res, err := client.Animation(ctx, in, anim)
	if err != nil {
		return domain.SummaryResult{}, fmt.Errorf("animation failed: %w", err)
	}
	return *res, nil
}

func (s *Server) handleExport(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.SummaryResult, error) {
	client, in, err := s.prepare(args)
	if err != nil {
		return domain.SummaryResult{}, err
	}
	name, _ := args["format"].(string)
	format, err := domain.ParseExportFormat(name)
	if err != nil {
		return domain.SummaryResult{}, err
	}
	res, err := client.Export(ctx, in, format)
	if err != nil {
		return domain.SummaryResult{}, fmt.Errorf("export failed: %w", err)
	}
	return *res, nil
}

func (s *Server) handleFormats(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (FormatList, error) {
	return FormatList{Formats: exportFormats()}, nil
}

func (s *Server) client(args map[string]interface{}) (Client, error) {
	model, _ := args["model"].(string)
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("%w: model is required", domain.ErrInvalidInput)
	}
	return s.clients(model)
}

func (s *Server) prepare(args map[string]interface{}) (Client, domain.ParameterInput, error) {
	client, err := s.client(args)
	if err != nil {
		return nil, domain.ParameterInput{}, err
	}
	in := domain.ListInput(nil)
	if raw, ok := args["parameters"].(string); ok && strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &in); err != nil {
			s.logger.Warn("MCP: parameters rejected", "err", err)
			return nil, domain.ParameterInput{}, err
		}
	}
	in, err = in.Rooted(s.modelsDir)
	if err != nil {
		s.logger.Warn("MCP: parameters rejected", "err", err)
		return nil, domain.ParameterInput{}, err
	}
	return client, in, nil
}

func exportFormats() []FormatInfo {
	var formats []FormatInfo
	for _, f := range domain.Formats() {
		if f.Internal() || f.Family() == domain.FamilyText {
			continue
		}
		formats = append(formats, FormatInfo{Name: f, Family: f.Family(), Extension: f.Extension()})
	}
	return formats
}

func (s *Server) registerResources() {
	// EXPOSE: scadwrap://formats
	s.mcpServer.AddResource(mcp.NewResource(FormatsURI, "Export Formats",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, _ := json.Marshal(FormatList{Formats: exportFormats()})

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      FormatsURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

package mcp

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/stepwise/internal/auth"
	"github.com/rpggio/stepwise/internal/domain/catalog"
	"github.com/rpggio/stepwise/internal/domain/progress"
)

// CatalogService defines catalog operations needed by MCP.
type CatalogService interface {
	List(ctx context.Context, opts catalog.ListOptions) ([]catalog.Activity, error)
}

// ProgressService defines lifecycle operations needed by MCP.
type ProgressService interface {
	AddActivity(ctx context.Context, userID, activityID string) (*progress.AddResult, error)
	Start(ctx context.Context, userID, id string) (*progress.UserActivity, error)
	ToggleStep(ctx context.Context, userID, id string, stepNumber int) (*progress.UserActivity, error)
	Complete(ctx context.Context, userID, id string) (*progress.UserActivity, error)
	Skip(ctx context.Context, userID, id string) (*progress.UserActivity, error)
	Resume(ctx context.Context, userID, id string) (*progress.UserActivity, error)
	Remove(ctx context.Context, userID, id string) (string, error)
	ListForUser(ctx context.Context, userID string, opts progress.ListOptions) ([]progress.Entry, error)
	Stats(ctx context.Context, userID string) (*progress.Stats, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Catalog  CatalogService
	Progress ProgressService
}

// Config contains server configuration.
type Config struct {
	Services Services
	// Tokens verifies bearer tokens in HTTP mode.
	Tokens *auth.TokenManager
	// StdioSession is the identity every stdio request acts as.
	StdioSession  *auth.Session
	TransportMode string // "stdio" or "http"
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "stepwise",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       logger,
	})

	registerDocResources(server)

	// Middleware added later wraps earlier middleware, so the session is
	// resolved before traffic is logged.
	server.AddReceivingMiddleware(callLogging(logger, "inbound"))
	server.AddSendingMiddleware(callLogging(logger, "outbound"))
	// Stdio is a local, single-user transport.
	if cfg.TransportMode == "stdio" {
		server.AddReceivingMiddleware(staticSessionMiddleware(cfg.StdioSession))
	} else {
		server.AddReceivingMiddleware(authMiddleware(cfg.Tokens))
	}

	registerTools(server, cfg.Services)

	return server
}

// NewHTTPHandler serves the MCP server over streamable HTTP.
func NewHTTPHandler(server *sdkmcp.Server) http.Handler {
	return sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return server },
		&sdkmcp.StreamableHTTPOptions{Stateless: true},
	)
}

package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docqa/internal/logger"
)

// Version is reported to clients during initialisation.
const Version = "0.1.0"

// shutdownGrace bounds how long in-flight HTTP sessions get after cancellation.
const shutdownGrace = 5 * time.Second

// instructions tells clients how the tools fit together.
const instructions = `docqa answers questions from uploaded documents only.
Call "ask" with a question; the reply is either three lines (answer, verbatim
quotation, "file | chunk N" source) or the fallback sentence when the documents
do not support an answer. "list_documents" and the docqa://documents resources
show what has been uploaded; "stats" gives collection totals.`

// Server exposes the answer and document services to MCP clients.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer builds the server and registers its tools and resources.
// Ports.Answer is required.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports: ports,
		server: mcp.NewServer(
			&mcp.Implementation{Name: "docqa", Version: Version},
			&mcp.ServerOptions{Instructions: instructions},
		),
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// Run serves one client over stdin/stdout until ctx is cancelled or the
// client disconnects.
func (s *Server) Run(ctx context.Context) error {
	logger.Debug("MCP server on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the streamable HTTP handler. Every session shares the
// same services.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// RunHTTP serves Handler on addr until ctx is cancelled. A cancelled context
// is a clean stop and returns nil.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("MCP HTTP shutdown: %v", err)
		}
	}()

	logger.Debug("MCP server on http %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		<-stopped
		return nil
	}
	return err
}

package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"stanchion/internal/logging"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"
)

const serverName = "stanchion"

// DefaultHTTPAddr is where the streamable HTTP transport listens unless the
// operator overrides it.
const DefaultHTTPAddr = "127.0.0.1:8483"

// Transport selects how the MCP server communicates with its client.
type Transport string

const (
	// TransportStdio uses stdin/stdout for communication (default, suitable
	// for local assistant integrations).
	TransportStdio Transport = "stdio"
	// TransportHTTP uses the streamable HTTP transport (suitable for remote
	// agents or multiple concurrent clients).
	TransportHTTP Transport = "http"
)

// Assessor produces the compliance assessment for one piece of
// infrastructure code. *standards.Assessor is the production implementation.
type Assessor interface {
	Assess(ctx context.Context, code string) (string, error)
}

// TemplateCatalog resolves the best boilerplate template for a free-form
// query, returning its name and content. *templates.Selector is the
// production implementation.
type TemplateCatalog interface {
	Select(ctx context.Context, query string) (name, content string, err error)
}

// Server wraps the MCP protocol server around the assessment and template
// components.
type Server struct {
	mcp      *mcpsrv.MCPServer
	logger   *logging.AppLogger
	assessor Assessor
	catalog  TemplateCatalog
	version  string
}

// Option configures a Server during New.
type Option func(*Server)

// WithLogger sets the logger. A nil logger keeps the default.
func WithLogger(l *logging.AppLogger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAssessor sets the component backing assess_code_for_enterprise_standards.
func WithAssessor(a Assessor) Option {
	return func(s *Server) { s.assessor = a }
}

// WithCatalog sets the component backing get_boilerplate_template.
func WithCatalog(c TemplateCatalog) Option {
	return func(s *Server) { s.catalog = c }
}

// WithVersion sets the server version advertised to MCP clients.
func WithVersion(v string) Option {
	return func(s *Server) {
		if v != "" {
			s.version = v
		}
	}
}

// New creates an MCP server with both tools registered. The server does not
// start listening until one of the Serve methods is called.
func New(opts ...Option) *Server {
	s := &Server{
		logger:  logging.GetDefault(),
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}

	mcpServer := mcpsrv.NewMCPServer(
		serverName,
		s.version,
		mcpsrv.WithInstructions(instructions()),
	)
	for _, t := range s.tools() {
		mcpServer.AddTool(t.Tool, t.Handler)
	}

	s.mcp = mcpServer
	return s
}

// instructions describes the server to the connecting assistant.
func instructions() string {
	return `You are connected to an enterprise standards server for Azure infrastructure code.

Available tools:
- assess_code_for_enterprise_standards: submit Bicep/ARM code and receive a compliance assessment against the enterprise naming, shared-resource, and security standards.
- get_boilerplate_template: describe the infrastructure you need (for example "web application", "virtual machine", "kubernetes cluster") and receive a matching Azure Bicep boilerplate template.

Assessments are advisory text produced by a language model. Neither tool modifies any resources.`
}

// ServeStdio runs the MCP server over stdin/stdout until ctx is cancelled.
// EOF on stdin is a clean shutdown, not an error.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := mcpsrv.NewStdioServer(s.mcp)
	s.logger.Info("MCP server listening on stdio")
	if err := srv.Listen(ctx, os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("mcp stdio server: %w", err)
	}
	return nil
}

// ServeHTTP runs the MCP server on the streamable HTTP transport at addr
// until ctx is cancelled. addr is a host:port string such as
// "127.0.0.1:8483".
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultHTTPAddr
	}
	streamSrv := mcpsrv.NewStreamableHTTPServer(s.mcp)

	s.logger.Info("MCP server listening on http", "addr", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := streamSrv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("mcp http server: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("MCP server shutting down")
		if err := streamSrv.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("mcp http server shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}

// resultText wraps text in a successful CallToolResult.
func resultText(text string) *mcplib.CallToolResult {
	return mcplib.NewToolResultText(text)
}

// resultErr wraps an error in a CallToolResult with IsError set. Tool errors
// reach the model as content, so the text must tell the caller what to fix.
func resultErr(err error) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(err.Error())},
		IsError: true,
	}
}

// stringArg extracts a named string argument from a tool call request.
// Returns ("", false) if the argument is absent or not a string.
func stringArg(req mcplib.CallToolRequest, name string) (string, bool) {
	args := req.GetArguments()
	if args == nil {
		return "", false
	}
	v, ok := args[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

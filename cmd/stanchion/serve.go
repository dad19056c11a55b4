package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"stanchion/internal/logging"
	"stanchion/internal/mcp"
	"stanchion/internal/standards"
	"stanchion/internal/templates"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var (
		transport string
		listen    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server",
		Long: `Serve exposes the assessment and template tools over the Model Context
Protocol so coding agents can call them.

The default stdio transport is what MCP client configurations expect; the
protocol owns stdout there, so diagnostics go to stderr or the debug log.
The http transport serves the streamable HTTP handler for clients that
connect over the network.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), transport, listen)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", string(mcp.TransportStdio), `MCP transport: "stdio" or "http"`)
	cmd.Flags().StringVar(&listen, "listen", mcp.DefaultHTTPAddr, "address to listen on when --transport=http")
	return cmd
}

func runServe(ctx context.Context, transport, listen string) error {
	logger := logging.NewAppLogger()
	cfg := loadOrDefaultConfig(logger)

	lib, err := standards.Load(cfg.LibraryDir, logger)
	if err != nil {
		return fmt.Errorf("load standards library: %w", err)
	}

	// A nil completer is served anyway: the assess tool reports how to
	// configure Azure OpenAI and template lookup falls back to keywords.
	completer := newCompleter(cfg, logger)

	srv := mcp.New(
		mcp.WithLogger(logger),
		mcp.WithAssessor(standards.NewAssessor(lib, completer)),
		mcp.WithCatalog(templates.NewCatalog(cfg.TemplatesDir, logger).Selector(completer)),
		mcp.WithVersion(version),
	)

	switch strings.ToLower(transport) {
	case string(mcp.TransportStdio), "":
		return srv.ServeStdio(ctx)
	case string(mcp.TransportHTTP):
		printBanner(listen)
		logger.Info("Serving MCP over HTTP", "addr", listen)
		return srv.ServeHTTP(ctx, listen)
	default:
		return fmt.Errorf("unknown transport %q (use \"stdio\" or \"http\")", transport)
	}
}

var (
	bannerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#ff5fd2"))

	bannerBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#5fd7ff")).
			Padding(1, 4)
)

// printBanner writes the startup banner to stderr. Only the http transport
// shows it; on stdio nothing but protocol frames may be written to stdout
// and MCP client logs should stay parseable.
func printBanner(addr string) {
	body := lipgloss.JoinVertical(lipgloss.Center,
		bannerTitleStyle.Render("STANCHION"),
		"Enterprise Standards",
		"Model Context Protocol Server",
		"",
		"http://"+addr,
	)
	fmt.Fprintln(os.Stderr, bannerBoxStyle.Render(body))
}

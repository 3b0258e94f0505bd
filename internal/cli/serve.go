package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/portscope/internal/config"
	"github.com/aretw0/portscope/internal/presentation/tui"
	httpAdapter "github.com/aretw0/portscope/pkg/adapters/http"
	"github.com/aretw0/portscope/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Serves port inspection, viewer sessions and marker creation as a JSON API.
The API description is at /openapi.yaml (browsable at /swagger) and
Prometheus metrics at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, cleanup, err := NewCommandContext(cmd, 0)
			if err != nil {
				return err
			}
			defer cleanup()

			app := c.App
			handler := httpAdapter.NewHandler(app.Inspector,
				httpAdapter.WithSessions(app.Sessions),
				httpAdapter.WithGatherer(app.Registry),
				httpAdapter.WithLogger(app.Logger),
			)
			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", app.Config.HTTP.Port),
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			sigCtx := NewSignalContext(cmd.Context())
			defer sigCtx.Cancel()

			tui.PrintBanner(c.Out, tui.ColorProfile(app.Config.Color))

			// Channel to listen for errors coming from the listener.
			serverErrors := make(chan error, 1)
			go func() {
				printSystemMessage(c.Out, "Starting portscope server on %s", srv.Addr)
				if app.Config.Scene != "" {
					printSystemMessage(c.Out, "Serving scene: %s", app.Config.Scene)
				} else {
					printSystemMessage(c.Out, "Serving Maya command port: %s", app.Config.Host.Addr)
				}
				serverErrors <- srv.ListenAndServe()
			}()

			select {
			case err := <-serverErrors:
				return fmt.Errorf("server error: %w", err)
			case <-sigCtx.Done():
				printSystemMessage(c.Out, "Start shutdown... Signal: %v", sigCtx.Signal())

				ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(ctx); err != nil {
					_ = srv.Close()
					return fmt.Errorf("graceful shutdown did not complete in %v: %w", shutdownTimeout, err)
				}
				printSystemMessage(c.Out, "Server stopped gracefully")
				return nil
			}
		},
	}
	cmd.Flags().IntP("port", "p", config.DefaultHTTPPort, "Port to listen on")
	return cmd
}

// NewMCPCommand creates the mcp command.
func NewMCPCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the Model Context Protocol (MCP) server",
		Long: `Exposes list_ports, extract_port and create_markers as MCP tools, and the
current scene selection as the portscope://selection resource.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, cleanup, err := NewCommandContext(cmd, 0)
			if err != nil {
				return err
			}
			defer cleanup()

			app := c.App
			srv := mcp.NewServer(app.Inspector, mcp.WithLogger(app.Logger))

			switch app.Config.MCP.Transport {
			case config.TransportStdio:
				// Stdout carries JSON-RPC; logs already go to stderr.
				app.Logger.Info("starting MCP server (stdio)")
				return srv.ServeStdio()
			case config.TransportSSE:
				sigCtx := NewSignalContext(cmd.Context())
				defer sigCtx.Cancel()
				app.Logger.Info("starting MCP server (SSE)", "port", app.Config.MCP.Port)
				if err := srv.ServeSSE(sigCtx, app.Config.MCP.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("MCP server execution failed: %w", err)
				}
				return nil
			default:
				return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", app.Config.MCP.Transport)
			}
		},
	}
	cmd.Flags().String("transport", config.TransportStdio, "Transport protocol to use: 'stdio' or 'sse'")
	cmd.Flags().Int("mcp-port", config.DefaultMCPPort, "Port to listen on (only for SSE)")
	return cmd
}

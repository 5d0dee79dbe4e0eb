package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/danielolaszy/triage/internal/logging"
	"github.com/danielolaszy/triage/internal/server"
	"github.com/danielolaszy/triage/internal/tools"
)

// serveCmd runs the HTTP front end with the MCP endpoint mounted under /mcp.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Run the HTTP server.

Exposes POST /analyze_tickets and POST /update_fields, a GET /health
probe, and the MCP streamable HTTP endpoint under /mcp.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, err := cmd.Flags().GetInt("port")
		if err != nil {
			return err
		}

		service, cfg, err := buildService("")
		if err != nil {
			return err
		}

		if port == 0 {
			port = cfg.Server.Port
		}

		srv := server.New(service, cfg.Analysis.DefaultStatus)

		mcpServer := tools.NewServer(version, &tools.Dependencies{
			Service:       service,
			DefaultStatus: cfg.Analysis.DefaultStatus,
			Logger:        logging.GetLogger(),
		})
		srv.MountMCP(mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
			return mcpServer
		}, nil))

		httpServer := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: srv.Routes(),
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logging.Error("server shutdown failed", "error", err)
			}
		}()

		logging.Info("http server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		logging.Info("shutdown complete")
		return nil
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (defaults to PORT)")
}

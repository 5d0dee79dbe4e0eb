package cmd

import (
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/danielolaszy/triage/internal/logging"
	"github.com/danielolaszy/triage/internal/tools"
)

// mcpCmd runs the MCP server on stdio for editor and agent integrations.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server on stdio",
	Long: `Run the MCP server on stdio.

Exposes the analyze_jira_tickets, update_jira_field and
batch_update_jira_fields tools. Logs go to stderr so stdout stays clean
for the protocol stream.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		service, cfg, err := buildService("")
		if err != nil {
			return err
		}

		mcpServer := tools.NewServer(version, &tools.Dependencies{
			Service:       service,
			DefaultStatus: cfg.Analysis.DefaultStatus,
			Logger:        logging.GetLogger(),
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logging.Info("starting MCP server", "transport", "stdio")
		return mcpServer.Run(ctx, &mcp.StdioTransport{})
	},
}

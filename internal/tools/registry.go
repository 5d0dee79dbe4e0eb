package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer creates the MCP server with middleware and all tools registered.
// The returned server is transport-agnostic; callers run it over stdio or
// mount it behind the streamable HTTP handler.
func NewServer(version string, deps *Dependencies) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "triage",
		Version: version,
	}, nil)

	server.AddReceivingMiddleware(LoggingMiddleware(deps.Logger))
	RegisterAll(server, deps)

	return server
}

// RegisterAll registers all tools with the MCP server.
func RegisterAll(server *mcp.Server, deps *Dependencies) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_jira_tickets",
		Description: "Analyze all tickets of a Jira Product Discovery project and derive the ai_ prefixed scoring fields (impact, effort, urgency, priority, theme and more)",
	}, NewAnalyzeHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_jira_field",
		Description: "Write ai_ prefixed fields to a single Jira ticket",
	}, NewUpdateFieldHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "batch_update_jira_fields",
		Description: "Write ai_ prefixed fields to multiple Jira tickets in one batch",
	}, NewBatchUpdateHandler(deps))
}

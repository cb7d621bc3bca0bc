// Package mcptools exposes scenario generation as Model Context Protocol
// tools so editors and agents can call it directly.
package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewScenarioMCPServer creates an MCP server with the scenario tools
// registered. list_runs is only added when svc has a history store.
func NewScenarioMCPServer(svc *ScenarioService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "scenariogen",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_scenarios",
		Description: "Generate BDD Given/When/Then scenarios for a user story. Personas draft in parallel; duplicates are merged and the list is cut to the requested count.",
	}, svc.GenerateScenarios)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "parse_scenarios",
		Description: "Extract scenarios from Gherkin or free-form text and classify each as positive, negative or edge_case. Does not call a model.",
	}, svc.ParseScenarios)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_personas",
		Description: "List the reviewer personas a generation mode runs with, in priority order.",
	}, svc.ListPersonas)

	if svc.history != nil {
		mcp.AddTool(server, &mcp.Tool{
			Name:        "list_runs",
			Description: "List recent generation runs recorded in the local history, newest first.",
		}, svc.ListRuns)
	}

	return server
}

// RunStdio runs the MCP server on stdio transport, blocking until stdin is
// closed or the context is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the MCP server over streamable HTTP on addr until ctx is
// cancelled.
func RunHTTP(ctx context.Context, server *mcp.Server, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

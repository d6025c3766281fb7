// Package mcptools exposes the cultural knowledge graph, scene analysis and
// plan validation as Model Context Protocol tools.
package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewTranscreateMCPServer creates an MCP server with all 5 tools registered.
func NewTranscreateMCPServer(svc *TranscreateService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "transcreate",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_cultural_node",
		Description: "Look up a knowledge-graph node by label (case-insensitive). Returns its id, type and owning culture.",
	}, svc.FindCulturalNode)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_candidates",
		Description: "List the nodes of a given type owned by a culture, e.g. every FOOD node of Japan. These are substitution candidates.",
	}, svc.GetCandidates)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_scene",
		Description: "Run cultural reasoning over a perception scene graph and return a Transcreation Plan of transformations and preservations.",
	}, svc.AnalyzeScene)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_plan",
		Description: "Validate a Transcreation Plan or Edit Plan document and list every violated field constraint.",
	}, svc.ValidatePlan)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_plan_schema",
		Description: "Return the JSON Schema of the transcreation or edit plan.",
	}, svc.GetPlanSchema)

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

	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

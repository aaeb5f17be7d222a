// Package mcp provides the runpane MCP server, registering all tools
// and publishing model instructions.
package mcp

import (
	"context"
	_ "embed"
	"net/url"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deixis/runpane"
	"github.com/deixis/runpane/internal/config"
	"github.com/deixis/runpane/internal/history"
	"github.com/deixis/runpane/internal/pipeline"
	"github.com/deixis/runpane/internal/runner"
	"github.com/deixis/runpane/internal/surface"
)

//go:embed instructions.md
var Instructions string

// handler holds shared dependencies for all tool handlers.
type handler struct {
	engine *pipeline.Engine
	runner *runner.Runner // retained for updateWorkspaceFromRoots
	store  *history.LRUStore
	sink   *surface.BufferSink
}

// NewServer creates an MCP server with all runpane tools registered.
// Rendered surfaces are returned as tool result text through a BufferSink.
func NewServer(cfg *config.Config, r *runner.Runner, store *history.LRUStore, workspace string) *mcp.Server {
	sink := surface.NewBufferSink()
	h := &handler{
		engine: &pipeline.Engine{
			Config:    cfg,
			Runner:    r,
			Surfaces:  surface.NewRegistry(sink),
			Store:     store,
			Workspace: workspace,
		},
		runner: r,
		store:  store,
		sink:   sink,
	}

	mcpOpts := &mcp.ServerOptions{
		Instructions: Instructions,
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{ListChanged: false},
		},
		InitializedHandler: func(ctx context.Context, req *mcp.InitializedRequest) {
			h.updateWorkspaceFromRoots(ctx, req.Session)
		},
	}
	s := mcp.NewServer(&mcp.Implementation{Name: "runpane", Version: runpane.Version}, mcpOpts)

	mcp.AddTool(s, &mcp.Tool{
		Name: "pane_run",
		Description: `Run the configured command against a file and show its output in the output surface.

The command's stdout and stderr are captured as one combined stream. A failing
command is reported with a distinct failure status carrying the exit code; a
command that cannot be started at all is an error. The file must be saved
first: the command only sees what is on disk.`,
	}, h.runHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "pane_show",
		Description: `Re-display a past run's captured output without re-running the command.

Use the run_id from a previous pane_run result. The output surface is reused:
its previous content is replaced, not appended to.`,
	}, h.showHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "pane_status",
		Description: "List open output surfaces and recent runs with their exit codes.",
	}, h.statusHandler)

	return s
}

// updateWorkspaceFromRoots queries the client for MCP roots and updates the
// handler's engine and runner if a valid root is returned. This is called
// during session initialization, before any tool calls.
func (h *handler) updateWorkspaceFromRoots(ctx context.Context, session *mcp.ServerSession) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	roots, err := session.ListRoots(ctx, &mcp.ListRootsParams{})
	if err != nil {
		return
	}
	if len(roots.Roots) == 0 {
		return
	}

	u, err := url.Parse(roots.Roots[0].URI)
	if err != nil || u.Scheme != "file" {
		return
	}
	workspace := u.Path

	loaded, err := config.Load(workspace)
	if err != nil {
		return
	}

	h.runner.Workspace = workspace
	h.runner.Timeout = loaded.Config.Timeout()
	h.runner.MaxOutput = loaded.Config.MaxOutputBytes()

	h.engine.Config = loaded.Config
	h.engine.Workspace = workspace
}

// textResult is a helper to build a text-only tool result.
func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// errorResult is a helper to build an error tool result.
func errorResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}, nil, nil
}

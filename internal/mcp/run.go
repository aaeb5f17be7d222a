package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deixis/runpane/internal/pipeline"
	"github.com/deixis/runpane/internal/surface"
)

type runParams struct {
	File    string   `json:"file" jsonschema:"Path to the file to run the command against, relative to the workspace or absolute."`
	Command string   `json:"command,omitempty" jsonschema:"Executable name or path overriding the configured command for this run."`
	Args    []string `json:"args,omitempty" jsonschema:"Extra arguments inserted between the configured args and the file."`
	Surface string   `json:"surface,omitempty" jsonschema:"Surface name overriding the configured one. Runs sharing a name share one surface."`
}

func (h *handler) runHandler(ctx context.Context, req *mcp.CallToolRequest, params runParams) (*mcp.CallToolResult, any, error) {
	if params.File == "" {
		return errorResult("file is required")
	}

	out, err := h.engine.Run(ctx, params.File, pipeline.Options{
		Command: params.Command,
		Args:    params.Args,
		Surface: params.Surface,
	})
	if err != nil {
		return errorResult(fmt.Sprintf("run failed: %v", err))
	}

	return textResult(formatOutcome(out, h.sink.Last(out.Surface)))
}

func formatOutcome(out *pipeline.Outcome, snap *surface.Snapshot) string {
	var b strings.Builder

	if out.Capture.Succeeded() {
		fmt.Fprintln(&b, "Status: PASS")
	} else {
		fmt.Fprintf(&b, "Status: FAIL (exit %d)\n", out.Capture.ExitCode)
	}
	fmt.Fprintf(&b, "Run: %s\n", out.Capture.RunID)
	fmt.Fprintf(&b, "Surface: %s\n", out.Surface)
	fmt.Fprintln(&b)

	if snap == nil || len(snap.Lines) == 0 {
		fmt.Fprintln(&b, "(no output)")
	} else {
		for _, line := range snap.Lines {
			fmt.Fprintln(&b, line)
		}
		if snap.Truncated {
			fmt.Fprintln(&b, "(output truncated)")
		}
	}

	if !out.Capture.Succeeded() {
		fmt.Fprintln(&b)
		fmt.Fprintf(&b, "Re-display later with pane_show(run_id=%q).\n", out.Capture.RunID)
	}

	return b.String()
}

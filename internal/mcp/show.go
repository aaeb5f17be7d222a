package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deixis/runpane/internal/pipeline"
)

type showParams struct {
	RunID   string `json:"run_id" jsonschema:"Identifier of a past run, as reported by pane_run."`
	Surface string `json:"surface,omitempty" jsonschema:"Surface name overriding the configured one."`
}

func (h *handler) showHandler(ctx context.Context, req *mcp.CallToolRequest, params showParams) (*mcp.CallToolResult, any, error) {
	if params.RunID == "" {
		return errorResult("run_id is required")
	}

	out, err := h.engine.Show(params.RunID, pipeline.Options{Surface: params.Surface})
	if err != nil {
		return errorResult(fmt.Sprintf("show failed: %v", err))
	}

	return textResult(formatOutcome(out, h.sink.Last(out.Surface)))
}

package mcp

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type statusParams struct{}

func (h *handler) statusHandler(ctx context.Context, req *mcp.CallToolRequest, params statusParams) (*mcp.CallToolResult, any, error) {
	var b strings.Builder

	open := h.engine.Surfaces.Open()
	sort.Strings(open)
	if len(open) == 0 {
		fmt.Fprintln(&b, "No open surfaces.")
	} else {
		fmt.Fprintln(&b, "Open surfaces:")
		for _, name := range open {
			fmt.Fprintf(&b, "  %s (%d lines)\n", name, len(h.engine.Surfaces.Lines(name)))
		}
	}
	fmt.Fprintln(&b)

	recent := h.store.Recent()
	if len(recent) == 0 {
		fmt.Fprintln(&b, "No recent runs.")
	} else {
		fmt.Fprintln(&b, "Recent runs:")
		for _, e := range recent {
			status := "ok"
			if !e.Succeeded() {
				status = fmt.Sprintf("exit %d", e.ExitCode)
			}
			fmt.Fprintf(&b, "  %s  %s  %s  %s\n", e.ID, e.RanAt.Format("15:04:05"), strings.Join(e.Command, " "), status)
		}
	}

	return textResult(b.String())
}

package tools

import "context"

// ToolContext carries call metadata into a tool.
type ToolContext struct {
	UserID    string
	SessionID string
	RequestID string
}

// Tool represents a capability the assistant flow can invoke.
// Input/output are generic maps to keep the surface flexible.
type Tool interface {
	Name() string
	Call(ctx context.Context, tctx ToolContext, input map[string]any) (map[string]any, error)
}

package service

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/axsim/idgen"
	"github.com/hazyhaar/axsim/kit"
)

// RegisterMCP registers the axsim tools on srv.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        "axsim_audit",
		Description: "Audit an HTML document for screen reader accessibility: reading order, landmarks, headings, form labels and live regions.",
		InputSchema: inputSchema(map[string]any{
			"html":     map[string]any{"type": "string", "description": "HTML document"},
			"name":     map[string]any{"type": "string", "description": "Name recorded as the report source"},
			"sanitize": map[string]any{"type": "boolean", "description": "Strip scripts and event handlers first"},
		}, []string{"html"}),
	}, s.audit, withRequestID(kit.DecodeJSON[AuditRequest]()))

	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        "axsim_tree",
		Description: "Build the accessibility tree of an HTML document.",
		InputSchema: inputSchema(map[string]any{
			"html":     map[string]any{"type": "string", "description": "HTML document"},
			"sanitize": map[string]any{"type": "boolean"},
		}, []string{"html"}),
	}, s.tree, withRequestID(kit.DecodeJSON[TreeRequest]()))

	kit.RegisterMCPTool(srv, &mcp.Tool{
		Name:        "axsim_simulate",
		Description: "Simulate NVDA, JAWS or VoiceOver navigating an HTML document and return what it would speak.",
		InputSchema: inputSchema(map[string]any{
			"html":      map[string]any{"type": "string", "description": "HTML document"},
			"vendor":    map[string]any{"type": "string", "enum": []string{"nvda", "jaws", "voiceover"}},
			"verbosity": map[string]any{"type": "string", "enum": []string{"minimal", "normal", "verbose"}},
			"platform":  map[string]any{"type": "string", "enum": []string{"macos", "ios"}},
			"browser":   map[string]any{"type": "string"},
			"commands": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Navigation commands such as next, next-heading-2, next-landmark, tab. Empty reads the whole page.",
			},
		}, []string{"html"}),
	}, s.simulate, withRequestID(kit.DecodeJSON[SimulateRequest]()))
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

var newRequestID = idgen.UUIDv7()

func withRequestID(dec func(*mcp.CallToolRequest) (*kit.MCPDecodeResult, error)) func(*mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	return func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		res, err := dec(req)
		if err != nil {
			return nil, err
		}
		id := newRequestID()
		res.EnrichCtx = func(ctx context.Context) context.Context { return kit.WithRequestID(ctx, id) }
		return res, nil
	}
}

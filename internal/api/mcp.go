package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/hireagent/internal/catalog"
	"github.com/kalambet/hireagent/internal/session"
)

// NewMCPServer creates an MCP server exposing the sales agent as tools.
func NewMCPServer(deps Deps) *server.MCPServer {
	s := server.NewMCPServer(
		"hireagent",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("hireagent: staffing-agency sales agent. Start a session, send the client's hiring request, then relay follow-up messages."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("start_session",
			mcp.WithDescription("Start a new sales conversation. If message is given it is sent as the first client turn and the proposal is returned."),
			mcp.WithString("message", mcp.Description("Optional first client message describing the hiring need")),
		),
		mcpStartSession(deps),
	)

	s.AddTool(
		mcp.NewTool("send_message",
			mcp.WithDescription("Send a client message to an existing session and return the agent's reply."),
			mcp.WithString("session_id", mcp.Description("Session identifier returned by start_session"), mcp.Required()),
			mcp.WithString("text", mcp.Description("Client message"), mcp.Required()),
		),
		mcpSendMessage(deps),
	)

	s.AddTool(
		mcp.NewTool("get_transcript",
			mcp.WithDescription("Return a session's conversation as Role: text lines."),
			mcp.WithString("session_id", mcp.Description("Session identifier"), mcp.Required()),
		),
		mcpGetTranscript(deps),
	)

	s.AddTool(
		mcp.NewTool("list_structured_data",
			mcp.WithDescription("List the most recent extracted hiring requests, newest first."),
			mcp.WithNumber("limit", mcp.Description("Maximum number of rows (default 50)")),
		),
		mcpListStructuredData(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"hireagent://catalog",
			"Service Catalog",
			mcp.WithResourceDescription("The service packages the agent recommends from"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceCatalog,
	)

	s.AddResource(
		mcp.NewResource(
			"hireagent://structured-data/recent",
			"Recent Hiring Requests",
			mcp.WithResourceDescription("Last 10 structured rows as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceRecent(deps),
	)

	return s
}

type startResult struct {
	SessionID string         `json:"session_id"`
	Reply     *session.Reply `json:"reply,omitempty"`
}

func mcpStartSession(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		v := deps.Sessions.Start()
		out := startResult{SessionID: v.ID}

		if msg := req.GetString("message", ""); msg != "" {
			reply, err := deps.Sessions.Handle(ctx, v.ID, msg)
			if err != nil {
				return mcpError(fmt.Sprintf("session %s started but first message failed: %v", v.ID, err)), nil
			}
			out.Reply = &reply
		}
		return mcpJSON(out)
	}
}

func mcpSendMessage(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("session_id")
		if err != nil {
			return mcpError("session_id is required"), nil
		}
		text, err := req.RequireString("text")
		if err != nil {
			return mcpError("text is required"), nil
		}

		reply, err := deps.Sessions.Handle(ctx, id, text)
		if errors.Is(err, session.ErrNotFound) {
			return mcpError(fmt.Sprintf("unknown session %q", id)), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("send failed: %v", err)), nil
		}
		return mcpJSON(reply)
	}
}

func mcpGetTranscript(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("session_id")
		if err != nil {
			return mcpError("session_id is required"), nil
		}
		text, err := deps.Sessions.Transcript(id)
		if err != nil {
			return mcpError(fmt.Sprintf("transcript unavailable: %v", err)), nil
		}
		return mcpText(text), nil
	}
}

func mcpListStructuredData(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if deps.Leads == nil {
			return mcpError("structured store not configured"), nil
		}
		rows, err := deps.Leads.ListStructuredLogs(ctx, clampLimit(req.GetInt("limit", 0)))
		if err != nil {
			return mcpError(fmt.Sprintf("listing failed: %v", err)), nil
		}
		if len(rows) == 0 {
			return mcpText("[]"), nil
		}
		return mcpJSON(rows)
	}
}

type catalogEntry struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}

func mcpResourceCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	var entries []catalogEntry
	for _, p := range catalog.Packages() {
		entries = append(entries, catalogEntry{ID: int(p), Label: p.String()})
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal catalog: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}

func mcpResourceRecent(deps Deps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		if deps.Leads == nil {
			return nil, errors.New("structured store not configured")
		}
		rows, err := deps.Leads.ListStructuredLogs(ctx, 10)
		if err != nil {
			return nil, fmt.Errorf("failed to list structured data: %w", err)
		}
		b, err := json.Marshal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal rows: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpJSON(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcpText(string(b)), nil
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}

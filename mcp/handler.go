// Package mcp exposes the editor controller as MCP tools, for agents that
// want to inspect the trail and notification panel of an item or drive a
// session with messages.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/foomo/ribbon/command"
	"github.com/foomo/ribbon/service"
	"github.com/foomo/ribbon/sheer"
)

const Version = "0.1.0"

type GetTrailRequest struct {
	URI string `json:"uri"` // The item uri to render the trail for
}

type GetTrailResponse struct {
	Markdown string `json:"markdown"` // The trail in markdown format
}

type GetNotificationsRequest struct {
	URI string `json:"uri"` // The item uri to collect notifications for
}

type GetNotificationsResponse struct {
	Markdown string `json:"markdown"` // The notification panel in markdown format
}

type PostMessageRequest struct {
	SessionID string            `json:"sessionId"` // The editing session to post into
	Name      string            `json:"name"`      // The message name
	Arguments map[string]string `json:"arguments"` // The message arguments
}

type PostMessageResponse struct {
	Error      string            `json:"error,omitempty"`
	Directives []sheer.Directive `json:"directives"` // Directives the message queued for the client
}

// NewServer creates an MCP server over the editor service.
func NewServer(serviceInstance *service.Server) *server.MCPServer {
	s := server.NewMCPServer(
		"Page Editor Ribbon MCP",
		Version,
		server.WithToolCapabilities(false),
	)

	getTrailTool := mcp.NewTool("getTrail",
		mcp.WithDescription("Render the breadcrumb trail of a content item as markdown"),
		mcp.WithString("uri",
			mcp.Required(),
			mcp.Description("The item uri (e.g. 'item://master/<id>?lang=en&ver=1')"),
		),
	)
	s.AddTool(getTrailTool, mcp.NewTypedToolHandler(getTrailHandler(serviceInstance)))

	getNotificationsTool := mcp.NewTool("getNotifications",
		mcp.WithDescription("Render the editor notifications of a content item as markdown"),
		mcp.WithString("uri",
			mcp.Required(),
			mcp.Description("The item uri to collect notifications for"),
		),
	)
	s.AddTool(getNotificationsTool, mcp.NewTypedToolHandler(getNotificationsHandler(serviceInstance)))

	postMessageTool := mcp.NewTool("postMessage",
		mcp.WithDescription("Post a client message into an editing session and return the queued directives"),
		mcp.WithString("sessionId",
			mcp.Required(),
			mcp.Description("The editing session id"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("The message name (e.g. 'ribbon:update', 'item:refresh')"),
		),
		mcp.WithObject("arguments",
			mcp.Description("The message arguments as string key/value pairs (e.g. id, lang, ver, db)"),
		),
	)
	s.AddTool(postMessageTool, mcp.NewTypedToolHandler(postMessageHandler(serviceInstance)))

	return s
}

func getTrailHandler(serviceInstance *service.Server) func(ctx context.Context, request mcp.CallToolRequest, args GetTrailRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args GetTrailRequest) (*mcp.CallToolResult, error) {
		if args.URI == "" {
			return mcp.NewToolResultError("uri is required"), nil
		}
		trailHTML, err := serviceInstance.RenderTrail(args.URI)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to render trail: %v", err)), nil
		}
		markdown, err := toMarkdown(trailHTML)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to convert trail: %v", err)), nil
		}
		return jsonResult(GetTrailResponse{Markdown: markdown})
	}
}

func getNotificationsHandler(serviceInstance *service.Server) func(ctx context.Context, request mcp.CallToolRequest, args GetNotificationsRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args GetNotificationsRequest) (*mcp.CallToolResult, error) {
		if args.URI == "" {
			return mcp.NewToolResultError("uri is required"), nil
		}
		panelHTML, err := serviceInstance.RenderNotificationsPanel(args.URI)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to render notifications: %v", err)), nil
		}
		markdown, err := toMarkdown(panelHTML)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to convert notifications: %v", err)), nil
		}
		return jsonResult(GetNotificationsResponse{Markdown: markdown})
	}
}

func postMessageHandler(serviceInstance *service.Server) func(ctx context.Context, request mcp.CallToolRequest, args PostMessageRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args PostMessageRequest) (*mcp.CallToolResult, error) {
		if args.SessionID == "" {
			return mcp.NewToolResultError("sessionId is required"), nil
		}
		if args.Name == "" {
			return mcp.NewToolResultError("name is required"), nil
		}
		err := serviceInstance.PostMessage(args.SessionID, command.Message{
			Name:      args.Name,
			Arguments: args.Arguments,
		})
		response := PostMessageResponse{
			Directives: serviceInstance.PendingDirectives(args.SessionID),
		}
		if err != nil {
			response.Error = err.Error()
		}
		return jsonResult(response)
	}
}

func jsonResult(response any) (*mcp.CallToolResult, error) {
	responseBytes, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseBytes)), nil
}

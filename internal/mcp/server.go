// Package mcp exposes the issue tracker as MCP tools over stdio, so agents
// can submit issues and drive status changes the same way the CLI does.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/issuedesk/internal/models"
	"github.com/joescharf/issuedesk/internal/tracker"
)

// Server wraps the tracker entry points and exposes them as MCP tools.
type Server struct {
	handler *tracker.Handler
	table   *tracker.IssueTable
}

// NewServer creates the MCP server wrapper.
func NewServer(handler *tracker.Handler, table *tracker.IssueTable) *Server {
	return &Server{handler: handler, table: table}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("issuedesk", "1.0.0", server.WithToolCapabilities(true))

	srv.AddTool(s.submitIssueTool())
	srv.AddTool(s.changeStatusTool())
	srv.AddTool(s.getIssueTool())
	srv.AddTool(s.listIssuesTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// issueOut is the JSON shape returned for one issue.
type issueOut struct {
	ID        string `json:"id"`
	Submitter string `json:"submitter"`
	Created   string `json:"created"`
	Assignee  string `json:"assignee,omitempty"`
	Status    string `json:"status"`
	DocURL    string `json:"doc_url,omitempty"`
}

func toIssueOut(issue *models.Issue) issueOut {
	return issueOut{
		ID:        issue.ID.String(),
		Submitter: issue.Submitter,
		Created:   issue.CreateTime.Format(models.TimeFormat),
		Assignee:  issue.Assignee,
		Status:    issue.Status,
		DocURL:    issue.DocURL,
	}
}

// issuedesk_submit_issue
func (s *Server) submitIssueTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("issuedesk_submit_issue",
		mcp.WithDescription("Submit a new issue from intake-form fields. Allocates the next sequential id, creates the companion document, and returns the created issue as JSON."),
		mcp.WithString("email", mcp.Required(), mcp.Description("Submitter email address")),
		mcp.WithString("summary", mcp.Description("One-line summary of the issue")),
		mcp.WithString("details", mcp.Description("Detailed description")),
		mcp.WithString("reason", mcp.Description("Why this matters")),
		mcp.WithString("severity", mcp.Description("Severity as stated by the submitter")),
		mcp.WithString("deadline", mcp.Description("Desired deadline, YYYY/MM/DD")),
		mcp.WithString("timestamp", mcp.Description("Submission time, YYYY/MM/DD HH:mm:ss (default: now)")),
	)
	return tool, s.handleSubmitIssue
}

func (s *Server) handleSubmitIssue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	email, err := request.RequireString("email")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: email"), nil
	}

	sub, err := tracker.ParseSubmission(
		email,
		request.GetString("timestamp", ""),
		request.GetString("summary", ""),
		request.GetString("details", ""),
		request.GetString("reason", ""),
		request.GetString("severity", ""),
		request.GetString("deadline", ""),
	)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("bad submission: %v", err)), nil
	}

	issue, err := s.handler.HandleSubmission(ctx, sub)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to submit issue: %v", err)), nil
	}

	data, err := json.Marshal(toIssueOut(issue))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal issue: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// issuedesk_change_status
func (s *Server) changeStatusTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("issuedesk_change_status",
		mcp.WithDescription("Change an issue's status. Writes the Status cell and renames the companion document's [STATUS] title marker, exactly like an edit on the Issues sheet."),
		mcp.WithString("issue_id", mcp.Required(), mcp.Description("Issue id, e.g. HELP-3")),
		mcp.WithString("status", mcp.Required(), mcp.Description("New status, e.g. OPEN, CLOSED")),
	)
	return tool, s.handleChangeStatus
}

func (s *Server) handleChangeStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idString, err := request.RequireString("issue_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: issue_id"), nil
	}
	status, err := request.RequireString("status")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: status"), nil
	}

	id, err := models.ParseIssueID(idString)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("bad issue id: %v", err)), nil
	}

	if err := s.handler.EditStatusCell(ctx, id, status); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to change status: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(`{"id":%q,"status":%q}`, id, status)), nil
}

// issuedesk_get_issue
func (s *Server) getIssueTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("issuedesk_get_issue",
		mcp.WithDescription("Get one issue by id. Returns the issue as JSON."),
		mcp.WithString("issue_id", mcp.Required(), mcp.Description("Issue id, e.g. HELP-3")),
	)
	return tool, s.handleGetIssue
}

func (s *Server) handleGetIssue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idString, err := request.RequireString("issue_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: issue_id"), nil
	}

	id, err := models.ParseIssueID(idString)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("bad issue id: %v", err)), nil
	}

	issue, err := s.table.FindByID(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get issue: %v", err)), nil
	}

	data, err := json.Marshal(toIssueOut(issue))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal issue: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// issuedesk_list_issues
func (s *Server) listIssuesTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("issuedesk_list_issues",
		mcp.WithDescription("List all tracked issues in sheet order. Returns a JSON array of issues with id, submitter, created, assignee, status, and doc_url."),
	)
	return tool, s.handleListIssues
}

func (s *Server) handleListIssues(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	issues, err := s.table.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list issues: %v", err)), nil
	}

	out := make([]issueOut, len(issues))
	for i, issue := range issues {
		out[i] = toIssueOut(issue)
	}

	data, err := json.Marshal(out)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal issues: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

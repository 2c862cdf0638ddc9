package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joescharf/issuedesk/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server for agent integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets agents submit issues and drive status changes through the
same code paths as the CLI. Configure with:

  {
    "mcpServers": {
      "issuedesk": { "command": "issuedesk", "args": ["mcp"] }
    }
  }

Available tools: issuedesk_submit_issue, issuedesk_change_status,
issuedesk_get_issue, issuedesk_list_issues`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mcpRun()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func mcpRun() error {
	a, err := getApp()
	if err != nil {
		return err
	}
	srv := mcp.NewServer(a.handler, a.table)
	return srv.ServeStdio(context.Background())
}

package cmd

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joescharf/issuedesk/internal/models"
	"github.com/joescharf/issuedesk/internal/output"
)

var listStatus string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked issues",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listRun()
	},
}

func init() {
	listCmd.Flags().StringVar(&listStatus, "status", "", "Filter by status (e.g. OPEN, CLOSED)")
	rootCmd.AddCommand(listCmd)
}

func listRun() error {
	a, err := getApp()
	if err != nil {
		return err
	}
	ctx := context.Background()

	issues, err := a.table.List(ctx)
	if err != nil {
		return err
	}

	if listStatus != "" {
		filtered := issues[:0]
		for _, issue := range issues {
			if issue.Status == listStatus {
				filtered = append(filtered, issue)
			}
		}
		issues = filtered
	}

	if len(issues) == 0 {
		ui.Info("No issues. Use 'issuedesk submit' to create one.")
		return nil
	}

	table := ui.Table([]string{"Issue ID", "Submitter", "Created", "Assignee", "Status", "Doc"})
	for _, issue := range issues {
		assignee := issue.Assignee
		if assignee == "" {
			assignee = "-"
		}
		docName := "-"
		if issue.DocURL != "" {
			docName = filepath.Base(issue.DocURL)
		}
		table.Append([]string{
			output.Cyan(issue.ID.String()),
			issue.Submitter,
			issue.CreateTime.Format(models.TimeFormat),
			assignee,
			output.StatusColor(issue.Status),
			docName,
		})
	}
	return table.Render()
}

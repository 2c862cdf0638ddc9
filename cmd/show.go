package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joescharf/issuedesk/internal/models"
	"github.com/joescharf/issuedesk/internal/output"
)

var showCmd = &cobra.Command{
	Use:   "show <issue-id>",
	Short: "Show one issue in detail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showRun(args[0])
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func showRun(rawID string) error {
	id, err := models.ParseIssueID(rawID)
	if err != nil {
		return err
	}

	a, err := getApp()
	if err != nil {
		return err
	}
	ctx := context.Background()

	issue, err := a.table.FindByID(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(ui.Out, "%s  %s\n\n", output.Cyan(issue.ID.String()), output.StatusColor(issue.Status))
	fmt.Fprintf(ui.Out, "  %-12s %s\n", "Submitter:", issue.Submitter)
	fmt.Fprintf(ui.Out, "  %-12s %s\n", "Created:", issue.CreateTime.Format(models.TimeFormat))
	assignee := issue.Assignee
	if assignee == "" {
		assignee = "(unassigned)"
	}
	fmt.Fprintf(ui.Out, "  %-12s %s\n", "Assignee:", assignee)

	if issue.DocURL != "" {
		fmt.Fprintf(ui.Out, "  %-12s %s\n", "Document:", issue.DocURL)
		if ref, err := a.docs.OpenByURL(ctx, issue.DocURL); err == nil {
			if title, err := a.docs.Title(ctx, ref); err == nil {
				fmt.Fprintf(ui.Out, "  %-12s %s\n", "Doc title:", title)
			}
		}
	}
	return nil
}

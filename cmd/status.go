package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joescharf/issuedesk/internal/models"
	"github.com/joescharf/issuedesk/internal/output"
)

var statusCmd = &cobra.Command{
	Use:   "status <issue-id> <new-status>",
	Short: "Change an issue's status",
	Long: `Change an issue's status, e.g. 'issuedesk status HELP-3 CLOSED'.

The Status cell on the Issues sheet is updated and the companion
document's title marker is rewritten to match. Status values are
free-form; OPEN, IN PROGRESS and CLOSED are the conventional ones.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusRun(args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func statusRun(rawID, newStatus string) error {
	id, err := models.ParseIssueID(rawID)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would set %s to %s", id, newStatus)
		return nil
	}

	a, err := getApp()
	if err != nil {
		return err
	}

	if err := a.handler.EditStatusCell(context.Background(), id, newStatus); err != nil {
		return err
	}

	ui.Success("%s is now %s", output.Cyan(id.String()), output.StatusColor(newStatus))
	return nil
}

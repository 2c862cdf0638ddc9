package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joescharf/issuedesk/internal/output"
	"github.com/joescharf/issuedesk/internal/tracker"
)

var (
	submitEmail     string
	submitTimestamp string
	submitSummary   string
	submitDetails   string
	submitReason    string
	submitSeverity  string
	submitDeadline  string
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a new issue",
	Long: `Submit a new issue from intake-form fields.

The submission is recorded on the raw submissions sheet, the next
sequential id is allocated, and a companion document is created and
filed under the issues folder.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return submitRun()
	},
}

func init() {
	submitCmd.Flags().StringVar(&submitEmail, "email", "", "Submitter email (required)")
	submitCmd.Flags().StringVar(&submitTimestamp, "timestamp", "", "Submission time, YYYY/MM/DD HH:mm:ss (default: now)")
	submitCmd.Flags().StringVar(&submitSummary, "summary", "", "One-line summary")
	submitCmd.Flags().StringVar(&submitDetails, "details", "", "Detailed description")
	submitCmd.Flags().StringVar(&submitReason, "reason", "", "Why this matters")
	submitCmd.Flags().StringVar(&submitSeverity, "severity", "", "Severity as stated by the submitter")
	submitCmd.Flags().StringVar(&submitDeadline, "deadline", "", "Desired deadline, YYYY/MM/DD")
	_ = submitCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(submitCmd)
}

func submitRun() error {
	sub, err := tracker.ParseSubmission(
		submitEmail, submitTimestamp, submitSummary,
		submitDetails, submitReason, submitSeverity, submitDeadline,
	)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would submit issue for %s: %s", sub.SubmitterEmail, sub.Summary)
		return nil
	}

	a, err := getApp()
	if err != nil {
		return err
	}

	issue, err := a.handler.HandleSubmission(context.Background(), sub)
	if err != nil {
		return err
	}

	ui.Success("Created issue %s: %s", output.Cyan(issue.ID.String()), sub.Summary)
	ui.Info("Companion doc: %s", issue.DocURL)
	return nil
}

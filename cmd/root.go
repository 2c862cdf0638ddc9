package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/issuedesk/internal/applog"
	"github.com/joescharf/issuedesk/internal/doc"
	"github.com/joescharf/issuedesk/internal/output"
	"github.com/joescharf/issuedesk/internal/sheet"
	"github.com/joescharf/issuedesk/internal/tracker"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui        *output.UI
	sharedApp *app

	verbose bool
	dryRun  bool
)

var rootCmd = &cobra.Command{
	Use:   "issuedesk",
	Short: "Issue intake tracker - sequential ids, sheet rows, companion docs",
	Long: `issuedesk tracks issues submitted through an intake form.
Each submission gets the next sequential id (e.g. HELP-3), a row in the
Issues sheet, and a companion markdown document whose title carries the
visible [STATUS] marker.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return listRun()
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without making changes")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/issuedesk/config.yaml)")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "issuedesk")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("ISSUEDESK")
	viper.AutomaticEnv()

	// Defaults via viper.SetDefault()
	home, _ := os.UserHomeDir()
	defaultConfigDir := filepath.Join(home, ".config", "issuedesk")

	viper.SetDefault("db_path", filepath.Join(defaultConfigDir, "issuedesk.db"))
	viper.SetDefault("docs_dir", filepath.Join(defaultConfigDir, "docs"))
	viper.SetDefault("issue_key", "ISSUE")
	viper.SetDefault("issues_sheet", "Issues")
	viper.SetDefault("submissions_sheet", "RawSubmissions")
	viper.SetDefault("log_sheet", "Log")
	viper.SetDefault("default_editor", "")
	viper.SetDefault("default_viewer", "")
	viper.SetDefault("log_max_rows", 2000)

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun

	// The app itself is built lazily, only when commands need it.
	// This allows config/version commands to run without a db.
}

// app bundles everything one invocation needs: store, sheets, documents,
// logger, and the tracker wired on top. Built once per invocation instead
// of living in process-wide singletons.
type app struct {
	store   *sheet.SQLiteStore
	issues  *sheet.SQLiteSheet
	table   *tracker.IssueTable
	handler *tracker.Handler
	docs    *doc.LocalStore
	logger  *applog.Logger
}

// getApp returns the shared app, initializing it on first call.
func getApp() (*app, error) {
	if sharedApp != nil {
		return sharedApp, nil
	}
	ctx := context.Background()

	store, err := sheet.NewSQLiteStore(viper.GetString("db_path"))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	issues, err := store.OpenSheet(ctx, viper.GetString("issues_sheet"), tracker.IssueHeaders)
	if err != nil {
		return nil, err
	}
	raw, err := store.OpenSheet(ctx, viper.GetString("submissions_sheet"), tracker.SubmissionHeaders)
	if err != nil {
		return nil, err
	}
	logSheet, err := store.OpenSheet(ctx, viper.GetString("log_sheet"), applog.Headers)
	if err != nil {
		return nil, err
	}
	logger := applog.New(logSheet, os.Getenv("USER"), viper.GetInt("log_max_rows"))

	docsDir := viper.GetString("docs_dir")
	docs, err := doc.NewLocalStore(docsDir)
	if err != nil {
		return nil, err
	}
	folder, err := doc.NewLocalFolder(filepath.Join(docsDir, "issues"))
	if err != nil {
		return nil, err
	}

	table, err := tracker.NewIssueTable(issues)
	if err != nil {
		return nil, err
	}

	repo := tracker.NewRepository(table, docs, folder, logger, tracker.Settings{
		IssueKey:      viper.GetString("issue_key"),
		DefaultEditor: viper.GetString("default_editor"),
		DefaultViewer: viper.GetString("default_viewer"),
	})

	sharedApp = &app{
		store:   store,
		issues:  issues,
		table:   table,
		handler: tracker.NewHandler(repo, table, raw, logger),
		docs:    docs,
		logger:  logger,
	}
	return sharedApp, nil
}

// Package main is the entry point for the stanchion CLI.
//
// stanchion reviews Azure infrastructure code against an enterprise security
// standards library. The same assessment and template lookup logic is
// reachable three ways: the interactive terminal UI (the bare command),
// one-shot commands (assess, template, standards), and an MCP server (serve)
// that coding agents connect to.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"stanchion/internal/config"
	"stanchion/internal/logging"
	"stanchion/internal/tui"
	"stanchion/internal/tui/helpers"
	"stanchion/internal/tui/setupmenu"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// These variables are set by the build process using ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stanchion",
		Short: "Assess Azure infrastructure code against enterprise security standards",
		Long: `Stanchion keeps infrastructure code aligned with an enterprise security
standards library. It reviews Bicep, ARM and Terraform sources with an
Azure OpenAI deployment, serves boilerplate templates, and exposes both
capabilities to coding agents over the Model Context Protocol.

Run without arguments for the interactive terminal UI.`,
		Version:      fmt.Sprintf("Version: %s\nCommit: %s\nBuild Date: %s", version, commit, date),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runRoot,
	}

	cmd.AddCommand(
		serveCmd(),
		assessCmd(),
		templateCmd(),
		standardsCmd(),
		setupCmd(),
		versionCmd(),
	)
	return cmd
}

// runRoot starts the interactive TUI, running the setup wizard first when no
// configuration exists yet.
func runRoot(cmd *cobra.Command, args []string) error {
	logger := logging.NewAppLogger()
	config.LoadDotEnv()

	if config.IsFirstRun() {
		if err := runSetupWizard(logger); err != nil {
			return err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	model := tui.NewMainModel(cfg, logger)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	return nil
}

// runSetupWizard runs the configuration wizard in full-screen mode. An
// existing configuration is passed in so the wizard offers current values as
// defaults. Cancelling is an error so callers never continue with a
// half-written configuration.
func runSetupWizard(logger *logging.AppLogger) error {
	var cfg *config.Config
	if !config.IsFirstRun() {
		if existing, err := config.Load(); err == nil {
			cfg = existing
		}
	}

	ctx := helpers.NewUIContext(0, 0, cfg, logger) // dimensions are set by the tea program
	menu := setupmenu.NewSetupModel(ctx)
	program := tea.NewProgram(menu, tea.WithAltScreen())

	finalModel, err := program.Run()
	if err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}

	setup := finalModel.(*setupmenu.SetupModel)
	if setup.Cancelled {
		return fmt.Errorf("setup cancelled by user")
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stanchion %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

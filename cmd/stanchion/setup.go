package main

import (
	"stanchion/internal/config"
	"stanchion/internal/logging"

	"github.com/spf13/cobra"
)

func setupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Run the interactive setup wizard",
		Long: `Setup walks through the Azure OpenAI connection, API key storage and the
standards library location, then writes the configuration file. Safe to
re-run; existing values are offered as defaults.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewAppLogger()
			config.LoadDotEnv()
			return runSetupWizard(logger)
		},
	}
}

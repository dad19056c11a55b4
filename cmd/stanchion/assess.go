package main

import (
	"context"
	"fmt"
	"io"

	"stanchion/internal/logging"
	"stanchion/internal/standards"
	"stanchion/pkg/fileops"

	"github.com/spf13/cobra"
)

func assessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assess <file>",
		Short: "Assess an infrastructure file against the standards library",
		Long: `Assess sends one Bicep, ARM or Terraform file together with the enterprise
standards to the configured Azure OpenAI deployment and prints the verdict.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssess(cmd.Context(), args[0], cmd.OutOrStdout())
		},
	}
}

func runAssess(ctx context.Context, path string, out io.Writer) error {
	logger := logging.NewAppLogger()
	cfg := loadOrDefaultConfig(logger)

	code, err := fileops.ReadTextFile(path, fileops.MaxPromptFileSize)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	completer := newCompleter(cfg, logger)
	if completer == nil {
		return errUnconfigured
	}

	lib, err := standards.Load(cfg.LibraryDir, logger)
	if err != nil {
		return fmt.Errorf("load standards library: %w", err)
	}

	logger.Info("Assessing file", "path", path, "bytes", len(code))
	verdict, err := standards.NewAssessor(lib, completer).Assess(ctx, code)
	if err != nil {
		return fmt.Errorf("assess %s: %w", path, err)
	}

	fmt.Fprint(out, renderMarkdown(verdict))
	return nil
}

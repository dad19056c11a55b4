package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"stanchion/internal/logging"
	"stanchion/internal/templates"

	"github.com/spf13/cobra"
)

func templateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "template <query>",
		Short: "Fetch the boilerplate template matching a description",
		Long: `Template picks the best-matching Bicep boilerplate for a plain-language
description like "web application" or "kubernetes cluster" and prints it.
With Azure OpenAI configured the model does the matching; otherwise a
keyword fallback picks from the catalog.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplate(cmd.Context(), strings.Join(args, " "), cmd.OutOrStdout())
		},
	}
}

func runTemplate(ctx context.Context, query string, out io.Writer) error {
	logger := logging.NewAppLogger()
	cfg := loadOrDefaultConfig(logger)

	catalog := templates.NewCatalog(cfg.TemplatesDir, logger)
	name, content, err := catalog.Select(ctx, newCompleter(cfg, logger), query)
	if err != nil {
		return fmt.Errorf("select template: %w", err)
	}

	// The name rides along as a Bicep comment so the output can be piped
	// straight into a file.
	fmt.Fprintf(out, "// %s\n%s", name, content)
	return nil
}

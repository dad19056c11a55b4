package main

import (
	"fmt"
	"text/tabwriter"

	"stanchion/internal/filemanager"
	"stanchion/internal/logging"
	"stanchion/internal/repository"
	"stanchion/internal/standards"

	"github.com/spf13/cobra"
)

func standardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "standards",
		Short: "Manage the enterprise standards library",
	}
	cmd.AddCommand(standardsListCmd(), standardsSyncCmd(), standardsInstallCmd())
	return cmd
}

func standardsListCmd() *cobra.Command {
	var showFiles bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the documents in the standards library",
		Long: `List shows the parsed documents of the resolved library. With --files it
lists the markdown files found in the library directory instead, including
ones the loader skipped, which helps track down documents that silently
fall back to their embedded defaults.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewAppLogger()
			cfg := loadOrDefaultConfig(logger)

			if showFiles {
				if cfg.LibraryDir == "" {
					return fmt.Errorf("no library directory configured: run 'stanchion setup' first")
				}
				items, err := filemanager.ScanStandardsDocs(cfg.LibraryDir)
				if err != nil {
					return fmt.Errorf("scan library directory: %w", err)
				}
				out := cmd.OutOrStdout()
				for _, item := range items {
					fmt.Fprintln(out, item.Path)
				}
				return nil
			}

			lib, err := standards.Load(cfg.LibraryDir, logger)
			if err != nil {
				return fmt.Errorf("load standards library: %w", err)
			}

			out := cmd.OutOrStdout()
			if lib.Dir() != "" {
				fmt.Fprintf(out, "Library: %s\n\n", lib.Dir())
			} else {
				fmt.Fprint(out, "Library: embedded defaults\n\n")
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCATEGORY\tSOURCE\tDESCRIPTION")
			for _, doc := range lib.Documents() {
				source := "library"
				if doc.Embedded {
					source = "embedded"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", doc.Name, doc.Category, source, doc.Description)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&showFiles, "files", false, "list markdown files on disk instead of parsed documents")
	return cmd
}

func standardsSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Sync a git-backed standards library",
		Long: `Sync fetches the latest standards from the configured git remote. A dirty
working tree is left untouched and reported, so local edits are never
overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewAppLogger()
			cfg := loadOrDefaultConfig(logger)

			if !cfg.HasRemoteLibrary() {
				return fmt.Errorf("no remote library configured: set library_url via 'stanchion setup'")
			}

			result := repository.SyncLibrary(cfg.LibraryURL, cfg.LibraryBranch, cfg.LibraryDir, logger)
			fmt.Fprintln(cmd.OutOrStdout(), result.Message())
			if result.Status == repository.SyncStatusFailed {
				return result.Err
			}
			return nil
		},
	}
}

func standardsInstallCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the embedded default standards into the library directory",
		Long: `Install writes the compiled-in default documents into the configured
library directory as a starting point for customization. Existing files
are kept unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewAppLogger()
			cfg := loadOrDefaultConfig(logger)

			if cfg.LibraryDir == "" {
				return fmt.Errorf("no library directory configured: run 'stanchion setup' first")
			}
			if err := standards.Install(cfg.LibraryDir, force, logger); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Installed default standards into %s\n", cfg.LibraryDir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing documents")
	return cmd
}

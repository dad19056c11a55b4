package standards

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"stanchion/internal/logging"
	"stanchion/pkg/fileops"
)

// Install materializes the embedded default documents into dir so operators
// can edit them. Existing files are left alone unless force is set; writes
// are atomic either way.
func Install(dir string, force bool, logger *logging.AppLogger) error {
	if logger == nil {
		logger = logging.GetDefault()
	}

	expanded := fileops.ExpandPath(dir)
	if err := fileops.ValidateStoragePath(expanded); err != nil {
		return fmt.Errorf("invalid library directory: %w", err)
	}
	if err := fileops.EnsureDirectoryExists(expanded); err != nil {
		return fmt.Errorf("create library directory: %w", err)
	}

	entries, err := fs.ReadDir(defaultsFS, "assets")
	if err != nil {
		return fmt.Errorf("read embedded standards: %w", err)
	}

	written := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		target := filepath.Join(expanded, entry.Name())
		if !force {
			if _, err := os.Stat(target); err == nil {
				logger.Debug("Keeping existing standards document", "path", target)
				continue
			}
		}

		content, err := defaultsFS.ReadFile("assets/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read embedded document %s: %w", entry.Name(), err)
		}
		if err := fileops.AtomicWriteFile(target, content, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", target, err)
		}
		written++
	}

	logger.Info("Standards documents installed", "dir", expanded, "written", written)
	return nil
}

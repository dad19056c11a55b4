package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"stanchion/internal/logging"
	"stanchion/pkg/fileops"
)

// LocalSource represents a local directory used directly as the standards library.
// No network operations are performed; it only validates the configured path.
//
// LocalSource is used when the library lives in a plain directory the user
// maintains themselves, outside of any git repository.
type LocalSource struct {
	// Path is the local directory holding the standards documents.
	// It should be an absolute path or home-relative (~/...).
	Path string
}

// NewLocalSource creates a new LocalSource instance with the specified path.
//
// Parameters:
//   - path: Local directory path for the standards library
//
// Returns:
//   - LocalSource: Configured local source instance
//
// Usage:
//
//	source := repository.NewLocalSource("~/standards")
//	localPath, syncInfo, err := source.Prepare(logger)
func NewLocalSource(path string) LocalSource {
	return LocalSource{
		Path: path,
	}
}

// Prepare validates the local path and returns it for use as the library root.
//
// Validation performed:
//   - Non-empty path
//   - Expand "~/" to the user's home directory
//   - Security validation (prevents traversal, reserved/system dirs) via fileops.ValidateStoragePath
//   - Directory must exist and be a directory
//
// No network operations are performed. The directory must already exist - this
// method does not create directories.
func (ls LocalSource) Prepare(logger *logging.AppLogger) (string, SyncInfo, error) {
	if logger != nil {
		logger.Info("Preparing local standards library", "path", ls.Path)
	}

	trimmed := strings.TrimSpace(ls.Path)
	if trimmed == "" {
		return "", SyncInfo{}, fmt.Errorf("local source path cannot be empty")
	}

	// Expand "~/" and clean the path
	expanded := fileops.ExpandPath(trimmed)
	clean := filepath.Clean(expanded)

	// Security and structural validation
	if err := fileops.ValidateStoragePath(clean); err != nil {
		return "", SyncInfo{}, fmt.Errorf("invalid local source path: %w", err)
	}

	// Must exist and be a directory
	info, err := os.Stat(clean)
	if err != nil {
		if os.IsNotExist(err) {
			return "", SyncInfo{}, fmt.Errorf("local source directory does not exist: %s", clean)
		}
		return "", SyncInfo{}, fmt.Errorf("cannot access local source directory: %w", err)
	}
	if !info.IsDir() {
		return "", SyncInfo{}, fmt.Errorf("local source path is not a directory: %s", clean)
	}

	// Ensure absolute path (ValidateStoragePath enforces absolute or "~/", and we expanded "~")
	abs, err := filepath.Abs(clean)
	if err != nil {
		// Fall back to the cleaned path if Abs resolution fails
		abs = clean
	}

	if logger != nil {
		logger.Debug("Local standards library validated", "resolved_path", abs)
	}

	// No syncing is performed for LocalSource; return informational message only
	return abs, SyncInfo{
		Cloned:  false,
		Updated: false,
		Dirty:   false,
		Message: "Using local standards library",
	}, nil
}

// String returns a string representation of the LocalSource for logging and debugging.
func (ls LocalSource) String() string {
	return fmt.Sprintf("LocalSource{Path: %s}", ls.Path)
}

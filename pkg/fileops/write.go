package fileops

import (
	"fmt"
	"os"
)

// AtomicWriteFile writes data to a file atomically. The destination either
// appears fully written or is left untouched, which matters when installing
// standards documents that another process may be reading mid-write.
//
// The function uses a temporary file approach:
//  1. Creates a temporary file next to the destination
//  2. Writes all data to the temporary file
//  3. Syncs data to disk to ensure durability
//  4. Atomically renames the temporary file to the final destination
//
// Parameters:
//   - destPath: Absolute path to the destination file
//   - data: Content to write
//   - perm: File mode for the destination (0644 for library documents, 0600 for secrets)
//
// Returns:
//   - error: Write operation errors, including destination creation or filesystem errors
//
// Security considerations:
//   - The path should be validated before calling this function
//   - Temporary files are cleaned up on any failure
//
// Usage example:
//
//	if err := fileops.AtomicWriteFile("/library/security_standards.md", data, 0o644); err != nil {
//	    return fmt.Errorf("install failed: %w", err)
//	}
//
// Note: This function requires write permissions in the destination directory
// and will overwrite existing files without warning.
func AtomicWriteFile(destPath string, data []byte, perm os.FileMode) error {
	tempPath := destPath + ".tmp"
	tempFile, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	// Ensure cleanup of the temp file if anything goes wrong
	var writeSuccess bool
	defer func() {
		tempFile.Close()
		if !writeSuccess {
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write file contents: %w", err)
	}

	// Sync to ensure data is written to disk
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	// The rename is the atomic operation
	if err := os.Rename(tempPath, destPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	writeSuccess = true
	return nil
}

// EnsureDirectoryExists creates a directory and all necessary parent directories.
// This is equivalent to `mkdir -p` and is safe to call multiple times.
//
// Parameters:
//   - path: Directory path to create
//
// Returns:
//   - error: Directory creation errors
//
// The function sets directory permissions to 0755 (readable and executable by all,
// writable by owner only).
//
// Usage example:
//
//	if err := fileops.EnsureDirectoryExists("~/infra/standards"); err != nil {
//	    return err
//	}
func EnsureDirectoryExists(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

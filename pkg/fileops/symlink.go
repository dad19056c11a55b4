package fileops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IsSymlink checks if a given path is a symbolic link.
// This function uses lstat to examine the file without following symlinks.
//
// Parameters:
//   - path: File path to check
//
// Returns:
//   - bool: true if the path is a symbolic link, false otherwise
//   - error: File system access errors
//
// Usage example:
//
//	isLink, err := fileops.IsSymlink("/path/to/potential/symlink")
//	if err != nil {
//	    return fmt.Errorf("failed to check symlink: %w", err)
//	}
func IsSymlink(path string) (bool, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return false, fmt.Errorf("failed to stat path: %w", err)
	}
	return info.Mode()&os.ModeSymlink != 0, nil
}

// ResolveSymlink resolves a symbolic link and returns the final target path.
// This function follows symlink chains until it reaches a non-symlink target.
//
// Parameters:
//   - linkPath: Path to the symbolic link
//
// Returns:
//   - string: Absolute path to the final target
//   - error: Resolution errors, including broken symlinks or permission issues
//
// Usage example:
//
//	target, err := fileops.ResolveSymlink("/path/to/symlink")
//	if err != nil {
//	    return fmt.Errorf("failed to resolve symlink: %w", err)
//	}
func ResolveSymlink(linkPath string) (string, error) {
	resolved, err := filepath.EvalSymlinks(linkPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve symlink: %w", err)
	}
	return resolved, nil
}

// ValidateSymlinkSecurity validates that a symlink and its target are safe.
// This function helps prevent symlink-based attacks by checking where symlinks
// resolve. The directory scanner calls it for every symlinked directory it
// encounters so a project tree cannot smuggle system files into a scan.
//
// Parameters:
//   - linkPath: Path to the symbolic link to validate
//   - allowedBasePaths: List of base paths that the symlink target must be within
//
// Returns:
//   - error: Security validation errors
//
// The function checks:
//   - Symlink exists and is actually a symlink
//   - Symlink can be resolved (not broken)
//   - Resolved target is within one of the allowed base paths
//
// Usage example:
//
//	allowedPaths := []string{"/project/infra"}
//	err := fileops.ValidateSymlinkSecurity("/project/infra/link.bicep", allowedPaths)
//	if err != nil {
//	    return fmt.Errorf("symlink security check failed: %w", err)
//	}
func ValidateSymlinkSecurity(linkPath string, allowedBasePaths []string) error {
	isLink, err := IsSymlink(linkPath)
	if err != nil {
		return fmt.Errorf("cannot check if path is symlink: %w", err)
	}
	if !isLink {
		return fmt.Errorf("path is not a symbolic link: %s", linkPath)
	}

	resolved, err := ResolveSymlink(linkPath)
	if err != nil {
		return fmt.Errorf("symlink resolution failed: %w", err)
	}

	resolvedAbs, err := filepath.Abs(resolved)
	if err != nil {
		return fmt.Errorf("cannot get absolute path of resolved target: %w", err)
	}

	// Canonicalize to handle macOS /private paths
	resolvedCanonical, err := filepath.EvalSymlinks(resolvedAbs)
	if err != nil {
		resolvedCanonical = resolvedAbs
	}

	for _, basePath := range allowedBasePaths {
		baseAbs, err := filepath.Abs(basePath)
		if err != nil {
			continue // Skip invalid base paths
		}

		baseCanonical, err := filepath.EvalSymlinks(baseAbs)
		if err != nil {
			baseCanonical = baseAbs
		}

		relPath, err := filepath.Rel(baseCanonical, resolvedCanonical)
		if err != nil {
			continue
		}

		if !strings.HasPrefix(relPath, "..") {
			return nil // Target is within an allowed base path
		}
	}

	return fmt.Errorf("symlink target is not within any allowed base path: %s", resolved)
}

package repository

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// GetDefaultLibraryDir returns the default standards library directory in the
// user's data directory, following the XDG Base Directory specification on
// Linux and equivalent conventions on other operating systems.
//
// The default directory is typically:
//   - Linux: ~/.local/share/stanchion/library
//   - macOS: ~/Library/Application Support/stanchion/library
//   - Windows: %LOCALAPPDATA%\stanchion\library
//
// Returns:
//   - string: Absolute path to the default library directory
//
// Note: This function only returns the path - it does not create the directory.
func GetDefaultLibraryDir() string {
	return filepath.Join(xdg.DataHome, "stanchion", "library")
}

// GetDefaultGitClonePath returns the default path for cloning a git-backed
// standards library. This generates a path within the application data
// directory based on the repository name.
//
// The path format is: <data dir>/stanchion/<repoName>
// For example:
//   - https://github.com/org/standards.git -> ~/.local/share/stanchion/standards
//   - git@github.com:org/policies.git -> ~/.local/share/stanchion/policies
//
// Parameters:
//   - repoName: Name of the repository (extracted from URL)
//
// Returns:
//   - string: Absolute path where the repository should be cloned
func GetDefaultGitClonePath(repoName string) string {
	return filepath.Join(xdg.DataHome, "stanchion", repoName)
}

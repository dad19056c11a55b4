// Package filemanager discovers the files stanchion surfaces to the user:
// infrastructure-as-code sources eligible for assessment and the markdown
// documents of a standards library. It is the integration point between the
// generic fileops directory scanner and the TUI list models.
package filemanager

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"stanchion/internal/logging"
	"stanchion/pkg/fileops"
)

// iacExtensions lists the infrastructure-as-code formats accepted for
// assessment. JSON is included because ARM templates ship as plain JSON.
var iacExtensions = []string{
	".bicep", ".json", ".tf", ".yaml", ".yml",
}

// markdownExtensions contains supported markdown file extensions
var markdownExtensions = []string{
	".md", ".mdown", ".mkdn", ".mkd", ".markdown",
}

// iacSkipPatterns excludes directories that never hold assessable sources:
// provider state, dependency trees, and build output.
var iacSkipPatterns = []string{
	".terraform", ".azure", "node_modules", ".git", "vendor",
	"bin", "obj", "target", "build", "dist", ".cache",
	"__pycache__", ".vscode", ".idea",
}

// ScanIaCFiles recursively scans root for infrastructure-as-code files and
// returns them as FileItems. An empty root means the current working
// directory.
//
// Security: Uses secure directory scanning with protection against path
// traversal and symlink attacks.
func ScanIaCFiles(root string) ([]FileItem, error) {
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current working directory: %w", err)
		}
		root = cwd
	}

	opts := &fileops.DirectoryScanOptions{
		SkipUnreadableDirs: true,
		MaxDepth:           20,
		IncludeHidden:      false,
		SkipPatterns:       iacSkipPatterns,
		FileFilter:         IsIaCFile,
	}

	scanner, err := fileops.NewDirectoryScanner(root, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory scanner: %w", err)
	}
	defer scanner.Close()

	files, err := scanner.ScanDirectory()
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory: %w", err)
	}

	result := toFileItems(files)
	logging.Debug("Scanned for infrastructure code", "root", root, "fileCount", len(result))
	return result, nil
}

// ScanStandardsDocs scans a standards library directory for markdown
// documents. A leading tilde in dir is expanded. Depth is capped low because
// standards libraries are shallow by convention.
func ScanStandardsDocs(dir string) ([]FileItem, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("standards directory is not set")
	}

	files, err := fileops.ScanWithFilter(fileops.ExpandPath(dir), isMarkdownFile, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to scan standards directory: %w", err)
	}

	result := toFileItems(files)
	logging.Debug("Scanned standards library", "dir", dir, "fileCount", len(result))
	return result, nil
}

// toFileItems converts scanner results to list items, dropping directories.
func toFileItems(files []fileops.FileInfo) []FileItem {
	var result []FileItem
	for _, file := range files {
		if !file.IsDir {
			result = append(result, FileItem{
				Name: file.Name,
				Path: file.Path,
			})
		}
	}
	return result
}

// IsIaCFile reports whether filename has an infrastructure-as-code
// extension. Exported so pickers can filter entries the same way the
// scanner does.
func IsIaCFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return slices.Contains(iacExtensions, ext)
}

// isMarkdownFile checks if a filename has a markdown extension.
// This function is used as a file filter for the directory scanner.
func isMarkdownFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return slices.Contains(markdownExtensions, ext)
}

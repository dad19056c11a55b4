package fileops

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ValidatePathSecurity performs comprehensive security validation on a file path.
// This function checks for common path traversal attacks and dangerous path patterns.
//
// The function validates:
//   - Path traversal attempts using ".." sequences
//   - Empty or whitespace-only paths
//   - Absolute paths that land in reserved system locations
//
// Parameters:
//   - path: The file path to validate
//
// Returns:
//   - error: Validation errors if the path is considered unsafe
//
// Security considerations:
//   - This function performs static analysis and does not access the filesystem
//   - Symlink resolution should be performed separately if needed
//
// Usage example:
//
//	if err := fileops.ValidatePathSecurity("../../etc/passwd"); err != nil {
//	    return err
//	}
func ValidatePathSecurity(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path cannot be empty")
	}

	// Check for path traversal in raw input
	if strings.Contains(path, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	// Clean and re-check for traversal
	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	// Absolute paths must not land in system locations
	if filepath.IsAbs(path) {
		if IsReservedDirectory(cleanPath) {
			return fmt.Errorf("path traversal not allowed")
		}
	}

	return nil
}

// ValidateFileInDirectory validates that a file path is within a specified base
// directory and that the file exists and is accessible. The standards library and
// template loaders use this to guarantee that nothing outside their configured
// directories ever reaches a prompt.
//
// Parameters:
//   - filePath: Full path to the file to validate
//   - baseDir: Base directory that should contain the file
//
// Returns:
//   - error: Validation errors if the file is outside the directory or inaccessible
//
// The function performs:
//   - Path resolution to absolute paths
//   - Containment verification using relative path calculation
//   - File existence and accessibility checks
//   - File type validation (ensures it's a regular file)
//   - Basic symlink security validation
//
// Usage example:
//
//	err := fileops.ValidateFileInDirectory("/library/security_standards.md", "/library")
//	if err != nil {
//	    return fmt.Errorf("file validation failed: %w", err)
//	}
func ValidateFileInDirectory(filePath, baseDir string) error {
	absFilePath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("cannot resolve file path: %w", err)
	}

	absBaseDir, err := filepath.Abs(baseDir)
	if err != nil {
		return fmt.Errorf("cannot resolve base directory: %w", err)
	}

	// Check if file is within base directory
	relPath, err := filepath.Rel(absBaseDir, absFilePath)
	if err != nil {
		return fmt.Errorf("cannot determine relative path: %w", err)
	}

	if strings.HasPrefix(relPath, "..") {
		return fmt.Errorf("file is not within base directory")
	}

	// Check if file exists and is accessible
	fileInfo, err := os.Stat(absFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", filepath.Base(filePath))
		}
		return fmt.Errorf("cannot access file: %w", err)
	}

	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file")
	}

	// Resolve symlinks and ensure the destination stays inside the base directory
	if fileInfo.Mode()&os.ModeSymlink != 0 {
		resolved, err := filepath.EvalSymlinks(absFilePath)
		if err != nil {
			return fmt.Errorf("cannot resolve symlink: %w", err)
		}

		relResolved, err := filepath.Rel(absBaseDir, resolved)
		if err != nil {
			return fmt.Errorf("cannot determine resolved relative path: %w", err)
		}

		if strings.HasPrefix(relResolved, "..") {
			return fmt.Errorf("symlink resolves outside base directory")
		}
	}

	return nil
}

// SanitizeFilename sanitizes a filename by removing or replacing dangerous characters.
// This function helps ensure filenames are safe for filesystem operations.
//
// Parameters:
//   - filename: The filename to sanitize
//
// Returns:
//   - string: Sanitized filename
//   - error: Validation errors for completely invalid filenames
//
// The function:
//   - Removes path components - only the base name survives
//   - Trims whitespace
//   - Validates against reserved names
//   - Ensures the filename is not empty after sanitization
//
// Usage example:
//
//	clean, err := fileops.SanitizeFilename("../../../etc/passwd")
//	if err != nil {
//	    return err
//	}
//	// clean will be "passwd" (safe to use)
func SanitizeFilename(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	// Remove any path components
	clean := filepath.Base(filename)

	clean = strings.ReplaceAll(clean, "..", "")
	clean = strings.TrimSpace(clean)

	if clean == "" || clean == "." || clean == ".." {
		return "", fmt.Errorf("invalid filename after sanitization: %q", filename)
	}

	// On Windows backslashes are separators, on Unix they are valid filename bytes
	if strings.ContainsAny(clean, `/`) {
		return "", fmt.Errorf("filename contains path separators: %q", clean)
	}

	return clean, nil
}

// ValidateFileAccess checks if a file exists and is accessible with specified permissions.
// This function provides a way to verify file accessibility before performing operations.
//
// Parameters:
//   - filePath: Path to the file to check
//   - requireWrite: Whether write access is required
//
// Returns:
//   - error: Access validation errors
//
// The function checks:
//   - File existence
//   - Read permissions (always required)
//   - Write permissions (if requireWrite is true)
//   - File is not a directory
//
// Usage example:
//
//	if err := fileops.ValidateFileAccess("/path/to/main.bicep", false); err != nil {
//	    return fmt.Errorf("cannot read file: %w", err)
//	}
func ValidateFileAccess(filePath string, requireWrite bool) error {
	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", filePath)
		}
		return fmt.Errorf("cannot access file: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	// Test read access
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("file is not readable: %w", err)
	}
	file.Close()

	// Test write access if required
	if requireWrite {
		file, err := os.OpenFile(filePath, os.O_WRONLY, 0)
		if err != nil {
			return fmt.Errorf("file is not writable: %w", err)
		}
		file.Close()
	}

	return nil
}

// ExpandPath expands a path that starts with "~/" to the user's home directory.
// This is a utility function for handling user home directory shortcuts.
//
// Parameters:
//   - path: The path to expand, which may start with "~/"
//
// Returns:
//   - string: The expanded path, or the original path if it doesn't start with "~/"
//
// Usage example:
//
//	expanded := fileops.ExpandPath("~/infra/standards")
//	// Returns something like "/home/user/infra/standards"
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// IsReservedDirectory checks if the path is a system or reserved directory
// that should not be used for application data storage. This function helps
// prevent applications from accidentally writing to critical system locations.
//
// Parameters:
//   - path: The path to check
//
// Returns:
//   - bool: true if the path is reserved/dangerous, false otherwise
//
// The function checks:
//   - System directories (like /etc, /bin, C:\Windows, etc.)
//   - Critical user directories (like ~/.ssh, ~/.gnupg)
//   - Resolves symlinks to check final destinations
//   - Platform-specific reserved locations
//
// Usage example:
//
//	if fileops.IsReservedDirectory("/etc/passwd") {
//	    return fmt.Errorf("cannot use system directory")
//	}
func IsReservedDirectory(path string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return true // If we can't resolve it, treat as reserved
	}
	absPath = filepath.Clean(absPath)

	// Resolve any symlinks in the path for comparison
	resolvedPath, err := filepath.EvalSymlinks(absPath)
	if err == nil {
		absPath = resolvedPath
	}

	// Always treat root as reserved
	if absPath == "/" || absPath == "\\" || absPath == "C:\\" {
		return true
	}

	absPath = filepath.Clean(absPath)
	reservedDirs := getReservedDirectories()

	for _, reserved := range reservedDirs {
		reservedAbs, err := filepath.Abs(reserved)
		if err != nil {
			continue
		}
		resolvedReserved, err := filepath.EvalSymlinks(reservedAbs)
		if err == nil {
			reservedAbs = filepath.Clean(resolvedReserved)
		} else {
			reservedAbs = filepath.Clean(reservedAbs)
		}

		// Exact match
		if strings.EqualFold(absPath, reservedAbs) {
			return true
		}

		// Child directory match, with an exception for user temp directories
		reservedPrefix := strings.ToLower(reserved) + string(os.PathSeparator)
		pathLower := strings.ToLower(absPath)

		if strings.HasPrefix(pathLower, reservedPrefix) {
			if isUserTempDirectory(absPath) {
				continue
			}
			return true
		}
	}

	return false
}

// getReservedDirectories returns platform-specific reserved directories
func getReservedDirectories() []string {
	var reservedDirs []string

	switch runtime.GOOS {
	case "windows":
		reservedDirs = []string{
			"C:\\Windows",
			"C:\\Program Files",
			"C:\\Program Files (x86)",
			"C:\\System32",
			"C:\\ProgramData\\Microsoft",
		}

	case "darwin":
		reservedDirs = []string{
			"/System",
			"/usr/bin",
			"/usr/sbin",
			"/bin",
			"/sbin",
			"/etc",
			"/var/log",
			"/var/db",
			"/var/root",
			"/Library/System",
			"/Applications",
			"/private/etc",
		}

	default: // Linux and other Unix
		reservedDirs = []string{
			"/bin",
			"/sbin",
			"/usr/bin",
			"/usr/sbin",
			"/etc",
			"/boot",
			"/dev",
			"/proc",
			"/sys",
			"/var/log",
			"/var/lib",
			"/var/cache",
			"/root",
		}
	}

	// Critical user directories stay off limits too
	if home, err := os.UserHomeDir(); err == nil {
		systemUserDirs := []string{
			filepath.Join(home, ".ssh"),
			filepath.Join(home, ".gnupg"),
		}
		reservedDirs = append(reservedDirs, systemUserDirs...)
	}

	return reservedDirs
}

// isUserTempDirectory detects legitimate user temp directories
func isUserTempDirectory(path string) bool {
	// macOS: /var/folders/xx/yyyy/T/ are user temp dirs
	if runtime.GOOS == "darwin" {
		if strings.Contains(path, "/var/folders/") {
			return true
		}
	}

	if runtime.GOOS == "linux" {
		if strings.HasPrefix(path, "/tmp/") || path == "/tmp" {
			return true
		}
	}

	if runtime.GOOS == "windows" {
		if strings.Contains(strings.ToLower(path), "\\temp\\") ||
			strings.Contains(strings.ToLower(path), "\\tmp\\") {
			return true
		}
	}

	// Check if path is under the system temp directory
	cleanSystemTemp := filepath.Clean(os.TempDir())
	cleanPath := filepath.Clean(path)

	return strings.HasPrefix(cleanPath, cleanSystemTemp)
}

// ValidateDirectoryWritable tests if a directory is writable by creating a test file.
// This function has side effects and should be called after path validation.
//
// Parameters:
//   - dirPath: The directory path to test for write permissions
//
// Returns:
//   - error: Write permission validation errors
//
// The function:
//   - Creates the directory if it doesn't exist
//   - Tests write permissions by creating a temporary test file
//   - Cleans up the test file after verification
//
// Usage example:
//
//	if err := fileops.ValidateDirectoryWritable("~/infra/standards"); err != nil {
//	    return fmt.Errorf("directory not writable: %w", err)
//	}
func ValidateDirectoryWritable(dirPath string) error {
	expandedPath := ExpandPath(strings.TrimSpace(dirPath))

	if err := EnsureDirectoryExists(expandedPath); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}

	// Test write permissions
	testFile := filepath.Join(expandedPath, ".fileops-test")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		return fmt.Errorf("no write permission in directory: %w", err)
	}

	// Cleanup failure is not fatal, the directory is usable
	_ = os.Remove(testFile)

	return nil
}

// ValidateStoragePath performs comprehensive validation for storage directory paths.
// This function combines multiple security and accessibility checks for directory
// paths intended for application data, such as the standards library or a local
// template collection.
//
// Parameters:
//   - path: The storage directory path to validate
//
// Returns:
//   - error: Validation errors if the path is unsafe or unsuitable
//
// The function validates:
//   - Path is not empty or whitespace-only
//   - Basic path security (no traversal attempts)
//   - Path must be absolute or relative to home directory (~/)
//   - Symlink security (resolved paths don't point to reserved directories)
//   - Reserved directory protection (system directories are rejected)
//   - Parent directory accessibility
//
// Usage example:
//
//	if err := fileops.ValidateStoragePath("~/infra/standards"); err != nil {
//	    return fmt.Errorf("invalid library path: %w", err)
//	}
func ValidateStoragePath(path string) error {
	trimmedPath := strings.TrimSpace(path)
	if trimmedPath == "" {
		return fmt.Errorf("storage directory cannot be empty")
	}

	if err := ValidatePathSecurity(trimmedPath); err != nil {
		return err
	}

	expandedPath := ExpandPath(trimmedPath)

	if !filepath.IsAbs(expandedPath) && !strings.HasPrefix(trimmedPath, "~/") {
		return fmt.Errorf("path must be absolute or relative to home directory (~)")
	}

	// Symlinks must not point into reserved directories
	if resolved, err := filepath.EvalSymlinks(expandedPath); err == nil {
		if IsReservedDirectory(resolved) {
			return fmt.Errorf("path resolves to reserved directory")
		}
	}

	if IsReservedDirectory(expandedPath) {
		return fmt.Errorf("cannot use system or reserved directories")
	}

	// Parent directory must exist and be accessible
	parentDir := filepath.Dir(expandedPath)
	if parentDir != "." {
		if _, err := os.Stat(parentDir); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("parent directory does not exist: %s", parentDir)
			}
			return fmt.Errorf("cannot access parent directory: %w", err)
		}
	}

	return nil
}

// ValidateTextContent verifies that content can be treated as plain text.
//
// The check intentionally stops at binary detection: infrastructure code and
// standards documents routinely contain strings that look like injection
// payloads (inline scripts, command snippets, template expressions), so
// pattern-based filtering would reject legitimate input. The LLM receives the
// content as data, never as executable instructions from this process.
//
// Parameters:
//   - content: The string content to validate
//
// Returns:
//   - error: Validation error if the content is not usable as text
//
// The function checks for:
//   - Null bytes (the usual marker of binary data)
//   - Control characters other than newlines, carriage returns, and tabs
//
// Usage example:
//
//	if err := fileops.ValidateTextContent(string(data)); err != nil {
//	    return fmt.Errorf("not a text file: %w", err)
//	}
func ValidateTextContent(content string) error {
	if strings.Contains(content, "\x00") {
		return fmt.Errorf("content contains null bytes")
	}

	for _, r := range content {
		if r < 32 && r != '\n' && r != '\r' && r != '\t' {
			return fmt.Errorf("content contains control characters")
		}
	}

	return nil
}

// SanitizeIdentifier sanitizes a string to be safe for use as an identifier.
// This function removes dangerous characters while preserving readability,
// making it suitable for document IDs, template names, or other identifiers.
//
// Parameters:
//   - identifier: The string to sanitize
//   - maxLength: Maximum allowed length (0 for no limit)
//
// Returns:
//   - string: Sanitized identifier
//   - error: Validation error if the identifier becomes empty after sanitization
//
// The function:
//   - Allows only alphanumeric characters, spaces, hyphens, underscores, and periods
//   - Normalizes multiple consecutive separators
//   - Trims leading/trailing separators
//   - Enforces length limits if specified
//
// Usage example:
//
//	clean, err := fileops.SanitizeIdentifier("naming convention (v2)", 50)
//	if err != nil {
//	    return "", err
//	}
//	// clean will be "naming_convention_v2"
func SanitizeIdentifier(identifier string, maxLength int) (string, error) {
	if strings.TrimSpace(identifier) == "" {
		return "", fmt.Errorf("identifier cannot be empty")
	}

	var cleanName strings.Builder

	for _, r := range identifier {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
			r == ' ' || r == '-' || r == '_' || r == '.' {
			cleanName.WriteRune(r)
		}
	}

	result := strings.TrimSpace(cleanName.String())

	// Collapse consecutive separators into a single underscore
	result = strings.ReplaceAll(result, "  ", " ")
	result = strings.ReplaceAll(result, " ", "_")
	result = strings.ReplaceAll(result, "--", "_")
	result = strings.ReplaceAll(result, "__", "_")

	if maxLength > 0 && len(result) > maxLength {
		result = result[:maxLength]
	}

	result = strings.Trim(result, "_-.")

	if result == "" {
		return "", fmt.Errorf("identifier becomes empty after sanitization")
	}

	return result, nil
}

// ValidateFileSizeLimit checks if a file size is within acceptable limits.
// This function helps prevent memory exhaustion from very large files and keeps
// prompt payloads inside what the model deployment can accept.
//
// Parameters:
//   - filePath: Path to the file to check
//   - maxSize: Maximum allowed file size in bytes
//
// Returns:
//   - error: Validation error if file exceeds size limit or cannot be accessed
//
// Usage example:
//
//	if err := fileops.ValidateFileSizeLimit("/path/to/main.bicep", fileops.MaxPromptFileSize); err != nil {
//	    return fmt.Errorf("file too large: %w", err)
//	}
func ValidateFileSizeLimit(filePath string, maxSize int64) error {
	if maxSize <= 0 {
		return fmt.Errorf("invalid size limit: %d", maxSize)
	}

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", filepath.Base(filePath))
		}
		return fmt.Errorf("cannot access file: %w", err)
	}

	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	if fileInfo.Size() > maxSize {
		return fmt.Errorf("file size %d bytes exceeds limit %d bytes", fileInfo.Size(), maxSize)
	}

	return nil
}

// IsDirEmpty reports whether the directory at path contains no entries.
//
// Parameters:
//   - path: Directory to inspect
//
// Returns:
//   - bool: true if the directory has no entries
//   - error: Error if the path cannot be read or is not a directory
func IsDirEmpty(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("cannot open directory: %w", err)
	}
	defer f.Close()

	_, err = f.Readdirnames(1)
	if err == io.EOF {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("cannot read directory: %w", err)
	}
	return false, nil
}

// Package fileops provides secure file operations with defense-in-depth validation patterns.
//
// Every file that stanchion reads on behalf of a user eventually travels into an
// LLM prompt or into the standards library, so this package validates paths,
// symlinks, sizes, and content before any bytes are trusted.
//
// # Security Validation Patterns
//
// For maximum security, combine validation functions in this order:
//
// 1. **Path Security**: ValidatePathSecurity() - Prevents path traversal attacks
// 2. **File Size**: ValidateFileSizeLimit() - Prevents resource exhaustion
// 3. **File Access**: ValidateFileAccess() - Ensures file readability/writability
// 4. **Directory Containment**: ValidateFileInDirectory() - Prevents directory escapes
// 5. **Content Checks**: ValidateTextContent() - Rejects binary or malformed input
// 6. **Symlink Handling**: Check IsSymlink(), ValidateSymlinkSecurity() - Prevents symlink attacks
//
// # Example: Reading Untrusted Input
//
// ReadTextFile runs the full pipeline in one call and is what the assessment
// and template layers use:
//
//	content, err := fileops.ReadTextFile(filePath, fileops.MaxPromptFileSize)
//	if err != nil {
//	    return fmt.Errorf("reading infrastructure file: %w", err)
//	}
//
// Callers that need finer control can compose the individual validators:
//
//	if err := fileops.ValidatePathSecurity(filePath); err != nil {
//	    return fmt.Errorf("path security: %w", err)
//	}
//	if err := fileops.ValidateFileSizeLimit(filePath, fileops.MaxPromptFileSize); err != nil {
//	    return fmt.Errorf("file size: %w", err)
//	}
//	if err := fileops.ValidateFileInDirectory(filePath, baseDir); err != nil {
//	    return fmt.Errorf("directory containment: %w", err)
//	}
//
// # Atomic Operations
//
// Use AtomicWriteFile() for writes that must appear fully formed or not at all,
// such as installing the embedded standards documents:
//
//	err := fileops.AtomicWriteFile(destPath, data, 0o644)
//	// Destination appears atomically or remains unchanged on failure
//
// # Directory Operations
//
// EnsureDirectoryExists() creates directories safely with proper permissions (0755).
package fileops

package fileops

import (
	"fmt"
	"os"
)

// MaxPromptFileSize is the largest file the assessment and template layers will
// read into memory. Anything bigger than this would blow past the context
// window of every supported deployment anyway.
const MaxPromptFileSize = 1 << 20 // 1 MiB

// ReadTextFile reads a file after running the full validation pipeline:
// path security, size limit, access check, and a text content check on the
// bytes themselves. It is the single entry point the rest of stanchion uses
// to pull user-supplied files into prompts.
//
// Parameters:
//   - filePath: Path to the file to read
//   - maxSize: Maximum allowed file size in bytes (use MaxPromptFileSize for prompt payloads)
//
// Returns:
//   - string: The file content
//   - error: The first validation or read error encountered
//
// Usage example:
//
//	content, err := fileops.ReadTextFile("deploy/main.bicep", fileops.MaxPromptFileSize)
//	if err != nil {
//	    return fmt.Errorf("reading infrastructure file: %w", err)
//	}
func ReadTextFile(filePath string, maxSize int64) (string, error) {
	if err := ValidatePathSecurity(filePath); err != nil {
		return "", err
	}

	if err := ValidateFileSizeLimit(filePath, maxSize); err != nil {
		return "", err
	}

	if err := ValidateFileAccess(filePath, false); err != nil {
		return "", err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("cannot read file: %w", err)
	}

	content := string(data)
	if err := ValidateTextContent(content); err != nil {
		return "", err
	}

	return content, nil
}

package repository

import (
	"fmt"
	"os"
	"strings"
	"time"

	"stanchion/internal/logging"
)

// SyncStatus represents the outcome of a library synchronization operation.
// It categorizes sync results into three states for proper error handling and UI display.
type SyncStatus int

const (
	// SyncStatusSuccess indicates the library was successfully synchronized
	SyncStatusSuccess SyncStatus = iota

	// SyncStatusFailed indicates the synchronization failed due to an error
	// (network issues, authentication failures, etc.)
	SyncStatusFailed

	// SyncStatusSkipped indicates the synchronization was intentionally skipped
	// (e.g., dirty working tree, no remote configured)
	SyncStatusSkipped
)

// String returns a human-readable representation of the sync status.
func (s SyncStatus) String() string {
	switch s {
	case SyncStatusSuccess:
		return "Success"
	case SyncStatusFailed:
		return "Failed"
	case SyncStatusSkipped:
		return "Skipped"
	default:
		return "Unknown"
	}
}

// SyncResult contains the outcome of synchronizing the standards library.
// It provides detailed status information for UI display and error reporting.
type SyncResult struct {
	// Status indicates the outcome of the sync operation
	Status SyncStatus

	// Info carries clone/fetch details when the sync ran
	Info SyncInfo

	// Err contains the error if Status is SyncStatusFailed
	Err error

	// SkipReason contains the reason for skipping if Status is SyncStatusSkipped.
	// Common reasons include "uncommitted changes", "no remote configured"
	SkipReason string

	// Duration is the time taken for the sync operation
	Duration time.Duration
}

// Message returns a UI-friendly message describing the sync result.
// The message format varies based on the sync status:
//   - Success: "Synced successfully in 1.2s"
//   - Failed: "Sync failed: network timeout"
//   - Skipped: "Skipped: uncommitted changes"
func (r SyncResult) Message() string {
	switch r.Status {
	case SyncStatusSuccess:
		if r.Info.Message != "" {
			return fmt.Sprintf("%s in %s", r.Info.Message, r.Duration.Round(100*time.Millisecond))
		}
		return fmt.Sprintf("Synced successfully in %s", r.Duration.Round(100*time.Millisecond))
	case SyncStatusFailed:
		if r.Err != nil {
			return fmt.Sprintf("Sync failed: %v", r.Err)
		}
		return "Sync failed: unknown error"
	case SyncStatusSkipped:
		if r.SkipReason != "" {
			return fmt.Sprintf("Skipped: %s", r.SkipReason)
		}
		return "Skipped"
	default:
		return "Unknown status"
	}
}

// SyncLibrary synchronizes a git-backed standards library with its remote.
//
// The function performs the following steps:
//  1. Skip if no remote URL is configured (local or builtin library)
//  2. Clone the repository if it does not exist locally yet
//  3. Check for uncommitted changes (skip if dirty)
//  4. Fetch updates from the remote (fail on error)
//
// Failures never leave the local library in a worse state: a failed fetch
// keeps the cached clone usable.
//
// Parameters:
//   - remoteURL: Git remote of the library (empty means not git-backed)
//   - branch: Optional branch name (empty uses remote's default branch)
//   - localPath: Local clone path of the library
//   - logger: Logger for structured logging (can be nil)
//
// Returns:
//   - SyncResult: Status, timing, and any error or skip reason
//
// Usage:
//
//	result := repository.SyncLibrary(cfg.LibraryURL, cfg.LibraryBranch, cfg.LibraryDir, logger)
//	fmt.Println(result.Message())
func SyncLibrary(remoteURL, branch, localPath string, logger *logging.AppLogger) SyncResult {
	startTime := time.Now()

	result := SyncResult{}

	// Libraries without a remote have nothing to sync
	if strings.TrimSpace(remoteURL) == "" {
		result.Status = SyncStatusSkipped
		result.SkipReason = "no remote configured"
		result.Duration = time.Since(startTime)
		return result
	}

	source := NewGitSource(remoteURL, branch, localPath)

	// First sync clones the repository
	if _, err := os.Stat(localPath); os.IsNotExist(err) {
		_, info, err := source.Prepare(logger)
		if err != nil {
			result.Status = SyncStatusFailed
			result.Err = fmt.Errorf("initial clone failed: %w", err)
			result.Duration = time.Since(startTime)
			return result
		}
		result.Status = SyncStatusSuccess
		result.Info = info
		result.Duration = time.Since(startTime)
		return result
	}

	// Check for uncommitted changes
	isDirty, err := IsWorkingTreeDirty(localPath)
	if err != nil {
		result.Status = SyncStatusFailed
		result.Err = fmt.Errorf("failed to check library status: %w", err)
		result.Duration = time.Since(startTime)
		return result
	}

	if isDirty {
		result.Status = SyncStatusSkipped
		result.SkipReason = "uncommitted changes"
		result.Info = SyncInfo{Dirty: true}
		result.Duration = time.Since(startTime)
		return result
	}

	// Perform the fetch
	info, err := source.FetchUpdates(logger)
	if err != nil {
		result.Status = SyncStatusFailed
		result.Err = fmt.Errorf("fetch updates failed: %w", err)
		result.Duration = time.Since(startTime)
		return result
	}

	if info.Dirty {
		// The tree turned dirty between the check and the fetch; treat as skipped
		result.Status = SyncStatusSkipped
		result.SkipReason = "uncommitted changes"
		result.Info = info
		result.Duration = time.Since(startTime)
		return result
	}

	result.Status = SyncStatusSuccess
	result.Info = info
	result.Duration = time.Since(startTime)

	if logger != nil {
		logger.Info("Library sync completed",
			"status", result.Status.String(),
			"duration", result.Duration,
		)
	}

	return result
}

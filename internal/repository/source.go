package repository

import (
	"stanchion/internal/logging"
)

// Source abstracts the different backings of the standards library.
// Implementations must resolve to a local filesystem path that the
// standards loader can use as its document root.
type Source interface {
	// Prepare validates and prepares the source for use, returning:
	// - localPath: absolute path to the local library root
	// - info: sync details/messages for UI consumption
	// - err: non-nil if resolution fails
	Prepare(logger *logging.AppLogger) (localPath string, info SyncInfo, err error)
}

// SyncInfo contains details about library synchronization for UI messaging.
type SyncInfo struct {
	Cloned  bool   // true if a clone occurred during Prepare()
	Updated bool   // true if a fetch/pull occurred during Prepare()
	Dirty   bool   // true if the local working tree has uncommitted changes
	Message string // UI-friendly message about sync status/results
}

package domain

import "errors"

// Discovery error taxonomy. Adapters treat both conditions as non-fatal:
// the affected mode contributes an empty or partial result and the session
// continues with whatever the other mode produced.
var (
	// ErrCapabilityUnavailable - the required radio backend is missing,
	// unsupported on this platform, or failed its availability probe
	ErrCapabilityUnavailable = errors.New("bluetooth capability unavailable")

	// ErrScanAborted - a runtime failure ended an active scan window early;
	// records accumulated before the failure are preserved
	ErrScanAborted = errors.New("scan aborted")
)

package domain

import "fmt"

// TransientNetworkError wraps timeouts, connection failures and empty
// responses. Callers may retry; the save debounce re-arms on the next edit.
type TransientNetworkError struct {
	Op  string
	Err error
}

func (e *TransientNetworkError) Error() string {
	return fmt.Sprintf("%s: transient network failure: %v", e.Op, e.Err)
}

func (e *TransientNetworkError) Unwrap() error { return e.Err }

// PermanentUploadError is a non-retryable upload failure. The local asset is
// preserved so the inspector can retry manually.
type PermanentUploadError struct {
	Status  int
	Message string
}

func (e *PermanentUploadError) Error() string {
	return fmt.Sprintf("upload rejected (status %d): %s", e.Status, e.Message)
}

// ReadingRejectedError means the extracted meter reading did not pass the
// backend's monotonicity check. The stale answer value is cleared and the
// inspector must re-capture.
type ReadingRejectedError struct {
	Reason string
}

func (e *ReadingRejectedError) Error() string {
	return fmt.Sprintf("reading rejected: %s", e.Reason)
}

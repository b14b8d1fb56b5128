package focus

import "errors"

var (
	// ErrTargetNotFound means no candidate window appeared within the
	// allowed discovery attempts.
	ErrTargetNotFound = errors.New("target window not found")

	// ErrSafetyBlock means the window holding focus is deny-listed. No
	// input may be sent while it is returned.
	ErrSafetyBlock = errors.New("safety block: forbidden window is active")

	// ErrActivationFailed means activation was requested but focus could
	// not be confirmed.
	ErrActivationFailed = errors.New("window activation failed")
)

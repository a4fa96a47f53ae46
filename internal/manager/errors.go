package manager

import "errors"

// alreadyInProgressError rejects an initialize call while another is running.
type alreadyInProgressError struct{}

func (alreadyInProgressError) Error() string { return "initialization already in progress" }

// ErrAlreadyInProgress is returned by Initialize during a running attempt.
var ErrAlreadyInProgress error = alreadyInProgressError{}

// IsAlreadyInProgress reports whether err rejects a concurrent initialization.
func IsAlreadyInProgress(err error) bool {
	var e alreadyInProgressError
	return errors.As(err, &e)
}

// assetRejectedError signals a missing or undersized asset.
type assetRejectedError struct{ msg string }

func (e assetRejectedError) Error() string { return "asset missing or undersized: " + e.msg }

// IsAssetMissingOrUndersized reports whether validation rejected the asset.
func IsAssetMissingOrUndersized(err error) bool {
	var e assetRejectedError
	return errors.As(err, &e)
}

// backendInitError wraps the backend's own initialization failure.
type backendInitError struct{ cause error }

func (e backendInitError) Error() string { return "backend initialization failed: " + e.cause.Error() }
func (e backendInitError) Unwrap() error { return e.cause }

// IsBackendInitializationFailure reports whether the backend refused to initialize.
func IsBackendInitializationFailure(err error) bool {
	var e backendInitError
	return errors.As(err, &e)
}

// notInitializedError signals a generate call before the session is ready.
type notInitializedError struct{}

func (notInitializedError) Error() string { return "model not initialized" }

// ErrNotInitialized is returned by Generate when no session is ready.
var ErrNotInitialized error = notInitializedError{}

// IsNotInitialized reports whether err means no session is ready.
func IsNotInitialized(err error) bool {
	var e notInitializedError
	return errors.As(err, &e)
}

// emptyPromptError signals a prompt that trims to nothing.
type emptyPromptError struct{}

func (emptyPromptError) Error() string { return "prompt is empty" }

// ErrEmptyPrompt is returned by Generate for blank prompts.
var ErrEmptyPrompt error = emptyPromptError{}

// IsEmptyPrompt reports whether err rejects a blank prompt.
func IsEmptyPrompt(err error) bool {
	var e emptyPromptError
	return errors.As(err, &e)
}

// dependencyUnavailableError signals a missing external dependency (e.g., llama.cpp)
// so the HTTP layer can return 503 Service Unavailable instead of 500.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing/failed runtime dependency.
func IsDependencyUnavailable(err error) bool {
	var e dependencyUnavailableError
	return errors.As(err, &e)
}

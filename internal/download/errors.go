package download

import (
	"errors"
	"fmt"
)

// ErrAlreadyInProgress is delivered when a download is requested while another is active.
var ErrAlreadyInProgress = alreadyInProgressError{}

// ErrCancelled is delivered when a download stops because Cancel was called
// or its context ended.
var ErrCancelled = cancelledError{}

type alreadyInProgressError struct{}

func (alreadyInProgressError) Error() string { return "download already in progress" }

// IsAlreadyInProgress reports whether err rejects a concurrent download.
func IsAlreadyInProgress(err error) bool {
	var e alreadyInProgressError
	return errors.As(err, &e)
}

type cancelledError struct{}

func (cancelledError) Error() string { return "download cancelled" }

// IsCancelled reports whether err signals a cancelled download.
func IsCancelled(err error) bool {
	var e cancelledError
	return errors.As(err, &e)
}

// networkOrServerError covers non-2xx responses, transport failures and
// payloads that fail the digest check. status is 0 unless a non-2xx
// response was received.
type networkOrServerError struct {
	status    int
	msg       string
	integrity bool
}

func (e networkOrServerError) Error() string {
	if e.integrity {
		return "integrity error: " + e.msg
	}
	if e.status != 0 {
		return fmt.Sprintf("server error: HTTP %d: %s", e.status, e.msg)
	}
	return "network error: " + e.msg
}

// StatusCode returns the HTTP status of the failed response, 0 if none was received.
func (e networkOrServerError) StatusCode() int { return e.status }

func errHTTPStatus(status int, msg string) error {
	return networkOrServerError{status: status, msg: msg}
}

func errNetwork(err error) error { return networkOrServerError{msg: err.Error()} }

func errDigest(got, want string) error {
	return networkOrServerError{msg: fmt.Sprintf("sha256 mismatch: calculated %s, expected %s", got, want), integrity: true}
}

// IsNetworkOrServer reports whether err is a network or non-2xx server failure.
func IsNetworkOrServer(err error) bool {
	var e networkOrServerError
	return errors.As(err, &e)
}

// HTTPStatusOf returns the upstream HTTP status carried by err, or 0.
func HTTPStatusOf(err error) int {
	var e networkOrServerError
	if errors.As(err, &e) {
		return e.status
	}
	return 0
}

type invalidRequestError struct{ msg string }

func (e invalidRequestError) Error() string { return "invalid download request: " + e.msg }

// IsInvalidRequest reports whether the request lacked a usable source or destination.
func IsInvalidRequest(err error) bool {
	var e invalidRequestError
	return errors.As(err, &e)
}

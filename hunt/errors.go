package hunt

import (
	"context"
	"errors"
	"net"

	"github.com/dealhound/dealhound/platform"
)

// categoryLabel maps an error to the label used on error metrics.
func categoryLabel(err error) string {
	if err == nil {
		return "unknown"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return "timeout"
	}
	var unavailable platform.UnavailableError
	if errors.As(err, &unavailable) {
		return "unavailable"
	}
	var search platform.SearchError
	if errors.As(err, &search) {
		return "search"
	}
	var action platform.ActionError
	if errors.As(err, &action) {
		return "action"
	}
	return "other"
}

// errorList flattens a joined error into its individual errors.
func errorList(err error) []error {
	if err == nil {
		return nil
	}
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return joined.Unwrap()
	}
	return []error{err}
}

package core

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrConfig marks bad initialization parameters. Startup must abort.
	ErrConfig = errors.New("invalid configuration")
	// ErrCapacityExceeded marks a full registry. The caller may retry after releasing.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrLoadFailure marks a failed file parse or backend upload.
	ErrLoadFailure = errors.New("load failure")
	// ErrConsistency marks a broken internal invariant, i.e. a programming bug.
	ErrConsistency = errors.New("consistency violation")
	// ErrNotFound marks a lookup or release of something that is not registered.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState marks an operation issued in the wrong lifecycle state.
	ErrInvalidState = errors.New("invalid state")

	ErrSwapchainBooting = errors.New("swapchain resized or recreated, booting")
)

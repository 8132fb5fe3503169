// Package wfcerr defines the error taxonomy shared by every wave function
// collapse package: allocation failures, malformed arguments, solver
// contradictions and unsupported-feature sentinels. Packages that need one
// of these wrap it with fmt.Errorf("...: %w", wfcerr.ErrX) so callers can
// still recover the class with errors.Is.
package wfcerr

import "errors"

var (
	// ErrAllocation marks a buffer or capacity that could not be grown.
	ErrAllocation = errors.New("wfc: allocation failure")
	// ErrBadArgument marks a malformed dimension or option combination.
	ErrBadArgument = errors.New("wfc: bad argument")
	// ErrContradiction marks a propagation or collapse that emptied a
	// cell's candidate set.
	ErrContradiction = errors.New("wfc: contradiction")
	// ErrUnsupported marks a feature disabled at build time or a request
	// (such as an image format) the implementation does not handle.
	ErrUnsupported = errors.New("wfc: unsupported")
)

package ai

import "errors"

// Extraction failures are surfaced to the user as a distinct "analysis
// failed" state; a boot with no report must look different from a boot with
// zero issues found.
var (
	// ErrTransport indicates the endpoint could not be reached or returned a
	// server-side failure.
	ErrTransport = errors.New("model endpoint unreachable")

	// ErrUnauthorized indicates a missing or rejected credential.
	ErrUnauthorized = errors.New("model endpoint rejected credentials")

	// ErrMalformedResponse indicates the model reply did not match the
	// required issue schema.
	ErrMalformedResponse = errors.New("model response does not match the expected schema")
)

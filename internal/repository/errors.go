// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver errors.
package repository

import "errors"

// ErrStatusConflict is returned when a conditional status update matched no
// row because the film was no longer in the expected status — typically two
// committee members racing to transition the same film. Handlers should
// translate this into an HTTP 409 response.
var ErrStatusConflict = errors.New("film status changed concurrently")

// ErrNotOpenForVoting is returned when a ballot is cast for a film that is
// not currently in the voting status. Handlers should translate this into
// an HTTP 409 response.
var ErrNotOpenForVoting = errors.New("film is not open for voting")

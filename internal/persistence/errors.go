package persistence

import "errors"

// Not-found sentinels. Ownership mismatches surface as the same not-found
// error as a missing row, so existence never leaks across users; the
// distinction stays in logs only.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrScriptNotFound  = errors.New("script not found")
	ErrJobNotFound     = errors.New("analysis job not found")
)

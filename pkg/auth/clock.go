package auth

import "time"

// Clock supplies the current instant to components that make time-based
// decisions (token lifetime validation, token issuance). Injecting a Clock
// keeps expiry behavior deterministic in tests.
type Clock interface {
	Now() time.Time
}

// systemClock is the production Clock backed by time.Now.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the default [Clock] used when none is configured.
var SystemClock Clock = systemClock{}

package core

import (
	"errors"
	"fmt"
)

// ErrIntegrity marks invariant violations: the derived graphs have diverged
// from their invariants, or input reached the engine that the validation
// boundary should have rejected. Such errors abort the whole transaction and
// must not be shown as ordinary denials.
var ErrIntegrity = errors.New("integrity violation")

func integrityf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrIntegrity)...)
}

// A Denial is a user-facing failure with a human-readable reason. Denials are
// expected and recoverable, the caller's process goes on.
type Denial struct {
	Reason string
}

func (d *Denial) Error() string {
	return d.Reason
}

func denied(format string, args ...interface{}) error {
	return &Denial{Reason: fmt.Sprintf(format, args...)}
}

// IsDenial reports whether err is a user-facing denial rather than a storage
// or integrity error.
func IsDenial(err error) bool {
	var d *Denial
	return errors.As(err, &d)
}

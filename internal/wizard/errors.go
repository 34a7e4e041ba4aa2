package wizard

import (
	"errors"
	"fmt"
)

// FatalError marks dialog failures that the CLI must report and exit
// non-zero on; there is no in-process recovery.
type FatalError struct {
	msg string
}

func (e *FatalError) Error() string { return e.msg }

// Fatalf builds a FatalError.
func Fatalf(format string, args ...any) *FatalError {
	return &FatalError{msg: fmt.Sprintf(format, args...)}
}

// IsFatal reports whether err is (or wraps) a FatalError.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}

// ErrNoCluster is returned when the decision procedure ends without a
// resolvable target cluster.
var ErrNoCluster = Fatalf("could not resolve target cluster")

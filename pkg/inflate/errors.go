package inflate

import "github.com/pkg/errors"

var (
	// ErrState indicates an accessor was called before a successful Inflate.
	ErrState = errors.New("inflate: engine has not been inflated")
	// ErrRuntime indicates the network and configuration cannot produce a
	// valid mesh.
	ErrRuntime = errors.New("inflate: cannot inflate")
)

// RuntimeError reports the inflation stage that failed. It matches
// ErrRuntime with errors.Is and unwraps to the underlying cause.
type RuntimeError struct {
	Stage string
	Err   error
}

func (e *RuntimeError) Error() string {
	return "inflate: " + e.Stage + ": " + e.Err.Error()
}

func (e *RuntimeError) Unwrap() error { return e.Err }

// Is reports whether target is ErrRuntime.
func (e *RuntimeError) Is(target error) bool { return target == ErrRuntime }

func fail(stage string, err error) error {
	return &RuntimeError{Stage: stage, Err: err}
}

func failf(stage, format string, args ...interface{}) error {
	return &RuntimeError{Stage: stage, Err: errors.Errorf(format, args...)}
}

package observability

import (
	"fmt"
	"runtime/debug"
)

// PanicError is returned by Recover when a panic was caught
type PanicError struct {
	Value interface{}
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Recover converts a panic raised by fn into a *PanicError and logs it with
// its stack. fn's own error is returned unchanged.
//
//	err := observability.Recover(logger, "notifications subscriber", func() error {
//		return handler(ctx, evt)
//	})
func Recover(logger *Logger, where string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := string(debug.Stack())
			logger.WithField("panic", fmt.Sprint(r)).
				WithField("stack", stack).
				WithField("context", where).
				Error("PANIC recovered")
			err = &PanicError{Value: r, Stack: stack}
		}
	}()
	return fn()
}

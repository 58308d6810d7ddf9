package hooks

import (
	"fmt"
	"runtime"
)

// PanicError is what a panicking handler settles with.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// settlePanic must be deferred directly; it converts a panic into a settled *PanicError.
func settlePanic(settled chan<- error) {
	if r := recover(); r != nil {
		buf := make([]byte, 64<<10)
		n := runtime.Stack(buf, false)
		settled <- &PanicError{Value: r, Stack: buf[:n]}
	}
}

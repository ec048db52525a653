// Package safe wraps goroutines with panic recovery, adapted from
// Tangerg-lynx's pkg/safe. Used by internal/research to keep one failing
// per-result enrichment task from crashing a request (spec §5).
package safe

import (
	"fmt"
	"runtime/debug"
	"time"
)

// PanicError captures a recovered panic's value, timestamp, and stack trace.
type PanicError struct {
	Time  time.Time
	Info  any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: timestamp=%s info=%+v\n%s", e.Time.Format(time.RFC3339Nano), e.Info, e.Stack)
}

// Go launches fn in a goroutine, invoking panicFn with a *PanicError if fn
// panics rather than crashing the process.
func Go(fn func(), panicFn func(error)) {
	go WithRecover(fn, panicFn)()
}

// WithRecover wraps fn so that a panic is recovered and reported to panicFn
// instead of propagating.
func WithRecover(fn func(), panicFn func(error)) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				if panicFn != nil {
					panicFn(&PanicError{Time: time.Now(), Info: r, Stack: debug.Stack()})
				}
			}
		}()
		fn()
	}
}

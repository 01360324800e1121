// internal/recovery/recovery.go
package recovery

import (
	"errors"
	"fmt"
	"log"
	"os"
	"runtime/debug"
)

// ErrPanic marks an error recovered from a panicking goroutine
var ErrPanic = errors.New("panic")

// HandlePanic should be deferred at the top of main().
// It reports panic details on stderr and in the log, then exits with code 1.
func HandlePanic() {
	if r := recover(); r != nil {
		stack := debug.Stack()
		log.Printf("recovery: fatal panic: %v\n%s", r, stack)
		_, _ = fmt.Fprintf(os.Stderr, "FATAL: %v\n\nStack trace:\n%s\n", r, stack)
		os.Exit(1)
	}
}

// Guard runs fn and turns a panic into an error wrapping ErrPanic, so an
// errgroup member that panics cancels its siblings instead of killing the
// process with the terminal still in raw mode.
//
//	g.Go(recovery.Guard("keyer", func() error {
//		return runKeyer(ctx)
//	}))
func Guard(name string, fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("recovery: %s panicked: %v\n%s", name, r, debug.Stack())
				err = fmt.Errorf("%s: %w: %v", name, ErrPanic, r)
			}
		}()
		return fn()
	}
}

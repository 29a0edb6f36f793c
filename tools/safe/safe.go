package safe

import (
	"PaketBild/logger"
	"PaketBild/tools/errs"

	"go.uber.org/zap"
)

// Call runs f and converts a panic into an error, so one faulting callee
// cannot unwind the caller's loop.
func Call(f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errs.ErrPanic(r)
		}
	}()
	return f()
}

// SafeGo starts a new goroutine that recovers from panic,
// so that panics don't crash the entire program.
func SafeGo(name string, f func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("[SafeGo] panic recovered", zap.String("task", name), zap.Any("panic", r), zap.Stack("stack"))
			}
		}()
		f()
	}()
}

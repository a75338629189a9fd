package common

import "errors"

var (
	ErrModulePaused  = errors.New("module paused")
	ErrReentrantCall = errors.New("reentrant call")
)

// PauseView reports whether a named module is administratively paused.
type PauseView interface {
	IsPaused(module string) bool
}

// Guard rejects the call when the module is paused. A nil view or empty
// module name disables the check.
func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return ErrModulePaused
	}
	return nil
}

// Latch is a per-instance reentrancy lock. Mutating entry points acquire it
// before calling out to untrusted collaborators and release it on every exit
// path; a nested acquisition while held fails with ErrReentrantCall.
//
// Latch is not safe for concurrent use across goroutines. It guards against
// same-stack reentry only, which matches the synchronous execution model of
// the engines that embed it.
type Latch struct {
	engaged bool
}

// Acquire takes the latch, failing when it is already held.
func (l *Latch) Acquire() error {
	if l == nil {
		return nil
	}
	if l.engaged {
		return ErrReentrantCall
	}
	l.engaged = true
	return nil
}

// Release frees the latch. Releasing an unheld latch is a no-op.
func (l *Latch) Release() {
	if l == nil {
		return
	}
	l.engaged = false
}

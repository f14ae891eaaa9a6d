package common

import "errors"

// ErrModulePaused is returned when a mutating operation targets a module the
// operator has paused.
var ErrModulePaused = errors.New("module paused")

// PauseView reports whether a named native module is currently paused.
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

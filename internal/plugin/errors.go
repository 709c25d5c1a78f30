package plugin

import "fmt"

// Policy decides what a failing hook does to the build.
type Policy int

const (
	// Fatal stops dispatch at the first failing hook and returns its error.
	Fatal Policy = iota
	// LogAndContinue logs the failure and moves on to the next plugin.
	LogAndContinue
)

func (p Policy) String() string {
	switch p {
	case Fatal:
		return "fatal"
	case LogAndContinue:
		return "log"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// HookError is a failure raised by one plugin's hook.
type HookError struct {
	Plugin string
	Hook   string
	Err    error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("plugin %s: %s: %v", e.Plugin, e.Hook, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}

package render

import "fmt"

// Error is a rendering failure identifying the template source.
type Error struct {
	Source string
	Stage  string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("render %s (%s): %v", e.Source, e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

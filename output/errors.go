package output

import "fmt"

// OpenError is returned when a sink cannot acquire its resource.
type OpenError struct {
	Target string
	Err    error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open sink %s: %s", e.Target, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// WriteError is returned when a sink fails to write or flush a record.
type WriteError struct {
	Target string
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write sink %s: %s", e.Target, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

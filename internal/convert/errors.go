package convert

import "fmt"

// The messages below are written into the task description, so their text
// is part of the plugin's output.

// NotFoundError reports a reference that names no field.
type NotFoundError struct {
	Literal string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf(`not found "%s"`, e.Literal)
}

// DuplicateReferenceError reports a reference listed more than once.
type DuplicateReferenceError struct {
	Literal string
}

func (e *DuplicateReferenceError) Error() string {
	return fmt.Sprintf(`duplicated "%s"`, e.Literal)
}

// BadFormatError reports a value that is not a YYYY-MM-DD lunar date.
type BadFormatError struct {
	Literal string
}

func (e *BadFormatError) Error() string {
	return fmt.Sprintf(`unexpected format for "%s"`, e.Literal)
}

// BadValueError reports a well-formed date the calendar rejected.
type BadValueError struct {
	Literal string
	Err     error
}

func (e *BadValueError) Error() string {
	return fmt.Sprintf(`unexpected value for "%s": %v`, e.Literal, e.Err)
}

func (e *BadValueError) Unwrap() error {
	return e.Err
}

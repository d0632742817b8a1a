package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrLoad marks failures to read or parse the backing dataset.
	ErrLoad = errors.New("dataset load failed")

	// ErrEmptyInput is returned when a layer is built from no usable cells.
	ErrEmptyInput = errors.New("no cells to render")
)

// LoadError reports a dataset that is missing, unreadable, or malformed.
// It matches ErrLoad with errors.Is.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() []error {
	return []error{ErrLoad, e.Err}
}

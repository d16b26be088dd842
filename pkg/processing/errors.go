package processing

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode is returned when a selected file cannot be decoded as an image
	ErrDecode = errors.New("decode error")
	// ErrIO is returned when an input cannot be read or an output cannot be written
	ErrIO = errors.New("io error")
)

// FileError describes why one file failed. It matches its Kind with
// errors.Is and still exposes the underlying cause.
type FileError struct {
	Path  string
	Stage string
	Kind  error
	Err   error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Path, e.Stage, e.Err)
}

func (e *FileError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func decodeError(path string, err error) error {
	return &FileError{Path: path, Stage: "decode", Kind: ErrDecode, Err: err}
}

func ioError(path, stage string, err error) error {
	return &FileError{Path: path, Stage: stage, Kind: ErrIO, Err: err}
}

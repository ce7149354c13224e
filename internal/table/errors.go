package table

import (
	"errors"
	"fmt"
)

// ErrFileNotFound is returned when the input path does not name an existing file.
var ErrFileNotFound = errors.New("file not found")

// ParseError reports malformed input. Line is 0 when the problem is not
// tied to a specific line.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

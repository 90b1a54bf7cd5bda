package catalog

import (
	"errors"
	"fmt"
)

// IOError reports a failed read or write of the cache file. The in-memory
// catalog stays usable when a save fails.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("catalog: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func IsIOError(err error) bool {
	var e *IOError
	return errors.As(err, &e)
}

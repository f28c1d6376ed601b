package questionset

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSources means none of the allow-listed question files exist.
	ErrNoSources = errors.New("no question files found")
	// ErrUnknownSource is returned for identifiers outside the allow-list.
	ErrUnknownSource = errors.New("unknown question source")
)

// LoadError reports why a source could not be turned into a Set.
type LoadError struct {
	Source string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load %s: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("load %s: %s", e.Source, e.Reason)
}

func (e *LoadError) Unwrap() error { return e.Err }

func loadErr(source, reason string, err error) *LoadError {
	return &LoadError{Source: source, Reason: reason, Err: err}
}

package asset

import (
	"errors"
	"fmt"
)

// ErrEmptyPayload is wrapped in a ParseError when the server returned no bytes.
var ErrEmptyPayload = errors.New("empty mesh payload")

// FetchError reports a transport failure or a non-2xx response from the mesh endpoint.
// StatusCode is zero for transport failures.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a payload that is not a readable mesh.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "parse mesh: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

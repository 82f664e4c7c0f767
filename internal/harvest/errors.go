package harvest

import (
	"errors"
	"fmt"
)

var (
	//ErrRenderTimeout means the page never stabilized within the scroll budget
	ErrRenderTimeout = errors.New("render timeout: page height did not stabilize")

	//ErrPassRunning means a harvest pass is already driving the browser
	ErrPassRunning = errors.New("a harvest pass is already running")
)

// DetailFetchError wraps a navigation or timeout failure for a single detail
// page. It is caught per item and never aborts the pass.
type DetailFetchError struct {
	URL   string
	Cause error
}

func (e *DetailFetchError) Error() string {
	return fmt.Sprintf("detail fetch failed for %s: %v", e.URL, e.Cause)
}

func (e *DetailFetchError) Unwrap() error {
	return e.Cause
}

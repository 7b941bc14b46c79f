package commontypes

import "fmt"

// FetchError reports a failed remote call: either the API answered with a
// failure flag or the request itself did not complete.
type FetchError struct {
	Op      string // e.g. "conversations.history", "completions"
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// IOError reports a local file write failure.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

package exchange

import "fmt"

// ImportError reports a snapshot that cannot be restored. Nothing is
// written when it is returned.
type ImportError struct {
	Field   string
	Message string
	Err     error
}

func (e *ImportError) Error() string {
	msg := "invalid snapshot"
	if e.Field != "" {
		msg += fmt.Sprintf(" (%s)", e.Field)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

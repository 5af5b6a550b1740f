package values

import (
	"errors"
	"fmt"
)

// ErrDecode matches every *DecodeError with errors.Is.
var ErrDecode = errors.New("decode error")

// DecodeError reports which structural expectation a serialized value violated.
type DecodeError struct {
	// Context names the thing being decoded, e.g. "bonded[3].value" or "literal".
	Context string
	Reason  string
}

func NewDecodeError(context string, format string, args ...interface{}) *DecodeError {
	return &DecodeError{
		Context: context,
		Reason:  fmt.Sprintf(format, args...),
	}
}

func (e *DecodeError) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("decode error: %s", e.Reason)
	}
	return fmt.Sprintf("decode error: %s: %s", e.Context, e.Reason)
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// WithContext prefixes the context of a DecodeError, leaving other errors untouched.
func WithContext(err error, context string) error {
	var de *DecodeError
	if errors.As(err, &de) {
		if de.Context == "" {
			return &DecodeError{Context: context, Reason: de.Reason}
		}
		return &DecodeError{Context: context + "." + de.Context, Reason: de.Reason}
	}
	return err
}

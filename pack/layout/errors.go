package layout

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrBadMagic means header signature or version is not MFL 4.0
	ErrBadMagic = errors.New("bad magic")
	// ErrMalformedRecord covers count/offset inconsistency, out of range
	// variant tags and truncated buffers
	ErrMalformedRecord = errors.New("malformed record")
	// ErrDuplicateName means two widgets or two panes share one name
	ErrDuplicateName = errors.New("duplicate name")
	// ErrUnresolvedReference means widget, pane or entry reference has no target
	ErrUnresolvedReference = errors.New("unresolved reference")
)

func malformedf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrMalformedRecord, format, args...)
}

func unresolvedf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrUnresolvedReference, format, args...)
}

func duplicatef(format string, args ...interface{}) error {
	return errors.Wrapf(ErrDuplicateName, format, args...)
}

// truncatedError reports buffer read failure as malformed record
// while keeping original read error in chain.
type truncatedError struct {
	what  string
	cause error
}

func (e *truncatedError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.what, ErrMalformedRecord, e.cause)
}

func (e *truncatedError) Is(target error) bool { return target == ErrMalformedRecord }
func (e *truncatedError) Unwrap() error        { return e.cause }

func truncated(cause error, format string, args ...interface{}) error {
	return errors.WithStack(&truncatedError{what: fmt.Sprintf(format, args...), cause: cause})
}

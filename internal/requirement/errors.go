package requirement

import (
	"errors"
	"fmt"
	"strings"
)

// Reasons a line is not recognized.
const (
	ReasonMissingPackage    = "can't find package name"
	ReasonUnknownAnnotation = "can't recognize comment"
	ReasonUnknownVersion    = "version is not a published release"
)

// RecognizeError reports a manifest line the upgrade cannot work with. The
// line is left untouched and the run continues.
type RecognizeError struct {
	Line   string
	Reason string
}

func (e *RecognizeError) Error() string {
	return fmt.Sprintf("%s: %q", e.Reason, strings.TrimRight(e.Line, "\r\n"))
}

// IsRecognizeError reports whether err is (or wraps) a RecognizeError.
func IsRecognizeError(err error) bool {
	var recErr *RecognizeError
	return errors.As(err, &recErr)
}

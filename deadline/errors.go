package deadline

import (
	"fmt"
	"strings"
	"time"
)

// ParseFailure reports shorthand text that could not be read. It never
// escapes Shorthand as an error; it travels on ParsedDeadline.Failure so the
// entry can be flagged for manual review.
type ParseFailure struct {
	Input    string
	Fallback time.Time
}

func (e *ParseFailure) Error() string {
	return fmt.Sprintf("unrecognised deadline %q, using %s", e.Input, e.Fallback.Format(time.RFC3339))
}

// DateFormatError is returned by Canonical when neither ISO-8601 nor the
// fixed portal layout matches.
type DateFormatError struct {
	Input string
	Tried []string
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("deadline %q matches none of [%s]", e.Input, strings.Join(e.Tried, ", "))
}

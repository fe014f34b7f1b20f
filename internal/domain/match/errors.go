package match

import (
	"errors"
	"fmt"
)

var (
	ErrUnrecognizedDate = errors.New("unrecognized date format")
	ErrInvalidKickoff   = errors.New("invalid kickoff time")
	ErrInvalidScore     = errors.New("invalid score value")
	ErrMalformedFixture = errors.New("fixture is not \"home - away\"")
	ErrMissingMatchID   = errors.New("match id is required")
)

// WriteError reports a failed match write. The transaction it ran in has been
// rolled back.
type WriteError struct {
	MatchID int64
	Step    string
	Err     error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write match %d: %s: %v", e.MatchID, e.Step, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

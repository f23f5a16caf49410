package privacy

// scrubbedError reports a scrubbed message but still unwraps to the cause,
// so errors.Is and errors.As keep working on the original.
type scrubbedError struct {
	cause error
	msg   string
}

func (e *scrubbedError) Error() string { return e.msg }

func (e *scrubbedError) Unwrap() error { return e.cause }

// WrapError returns err with its message passed through ScrubMessage, or nil
// for a nil err.
func WrapError(err error) error {
	if err == nil {
		return nil
	}
	return &scrubbedError{cause: err, msg: ScrubMessage(err.Error())}
}

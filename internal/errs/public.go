package errs

// Error pairs a sentinel kind with a message safe to show to callers.
type Error struct {
	Kind error
	Msg  string
}

// New builds an Error of the given kind.
func New(kind error, msg string) *Error { return &Error{Kind: kind, Msg: msg} }

func (e *Error) Error() string { return e.Msg }

// Unwrap returns the sentinel kind.
func (e *Error) Unwrap() error { return e.Kind }

package soundlaw

import "fmt"

// ParsingError is the error reported for a statement that could not
// be parsed.  Compile collects one per failed statement instead of
// stopping at the first.
type ParsingError struct {
	Message    string
	Production string
	Span       Span
}

// Error returns the human readable representation of a parsing error
func (e ParsingError) Error() string {
	return fmt.Sprintf("%s @ %s", e.Message, e.Span)
}

// backtrackingError is an internal error type that is captured by the
// Choice operator
type backtrackingError struct {
	Message    string
	Production string
	Expected   string
	Span       Span
}

func (e *backtrackingError) Error() string {
	return fmt.Sprintf("%s @ %s", e.Message, e.Span)
}

func isthrown(err error) bool {
	_, ok := err.(ParsingError)
	return ok
}

// Warning is a recoverable condition observed while a program runs,
// e.g. a `+=` edit naming a category that was never defined.  It is
// recorded on the InterpreterState rather than stopping the run.
type Warning struct {
	Message string
}

func (w Warning) String() string { return w.Message }

func warnf(format string, args ...any) Warning {
	return Warning{Message: fmt.Sprintf(format, args...)}
}

package cli

import "strconv"

// ExitError carries the process exit status for a failed command.
// Silent errors have already gone through the logger and are not printed by main.
type ExitError struct {
	Code   int
	Err    error
	Silent bool
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return "exit status " + strconv.Itoa(e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode implements the exitCoder contract used by main
func (e *ExitError) ExitCode() int {
	return e.Code
}

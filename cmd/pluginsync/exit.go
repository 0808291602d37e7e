package main

const (
	exitFailure = 1
	exitInvalid = 2
	// exitRestarted reports a successful run that restarted the host.
	exitRestarted = 3
)

type exitError struct {
	code    int
	message string
	silent  bool
}

func (e exitError) Error() string {
	return e.message
}

func exitSilent(code int) error {
	return exitError{code: code, silent: true}
}

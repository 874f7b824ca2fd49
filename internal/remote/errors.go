package remote

import "fmt"

// PersistenceError reports a remote store failure, carrying the provider's
// message. The mutation coordinator rolls the local mirror back before one of
// these reaches a caller.
type PersistenceError struct {
	Op         string
	Collection string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("remote %s on %s: %v", e.Op, e.Collection, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

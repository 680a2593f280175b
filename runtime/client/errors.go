package client

import "fmt"

// ConnectivityError reports a failure to reach or talk to the
// database, as opposed to a statement the database rejected.
type ConnectivityError struct {
	Op  string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("connectivity: %s: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

package config

import "fmt"

// Error reports an invalid or missing setting. It is fatal at startup and is
// never retried.
type Error struct {
	Setting string
	Reason  string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Setting != "" && e.Err != nil:
		return fmt.Sprintf("config: %s %s: %v", e.Setting, e.Reason, e.Err)
	case e.Setting != "":
		return fmt.Sprintf("config: %s %s", e.Setting, e.Reason)
	case e.Err != nil:
		return fmt.Sprintf("config: %s: %v", e.Reason, e.Err)
	default:
		return "config: " + e.Reason
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

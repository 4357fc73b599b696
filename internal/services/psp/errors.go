package psp

import (
	"errors"
	"fmt"
)

var (
	ErrRoutingFailed   = errors.New("all payment providers exhausted")
	ErrUnknownProvider = errors.New("unknown payment provider")
)

// RoutingError reports failover exhaustion with both providers' identities
// for diagnostics. Callers should surface only the opaque sentinel.
type RoutingError struct {
	Primary   Code
	Secondary Code
	Reason    string
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("both PSPs failed: primary=%s, secondary=%s: %s",
		e.Primary, e.Secondary, e.Reason)
}

func (e *RoutingError) Unwrap() error {
	return ErrRoutingFailed
}

// Package errors defines coded domain errors shared across services.
package errors

import "fmt"

// DomainError carries a stable machine-readable code next to a human message.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Package upstream holds the error types shared by the clients of the two
// remote services (the recipe catalog and the clip store).
package upstream

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// TransportError means the HTTP exchange itself failed: the network was
// unreachable, the status was not 2xx, or the body could not be decoded.
type TransportError struct {
	Service string
	Op      string
	// Status is 0 when no response was received.
	Status int
	// Body is a truncated copy of the response body, if any.
	Body string
	Err  error
}

func (e *TransportError) Error() string {
	msg := fmt.Sprintf("%s %s", e.Service, e.Op)
	if e.Status != 0 {
		msg += fmt.Sprintf(": status %d", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// LogicalError means the remote answered but reported a failure of its own
// through its result code.
type LogicalError struct {
	Service string
	Code    string
	Message string
}

func (e *LogicalError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Service, e.Message, e.Code)
}

const maxBodySnippet = 512

// Snippet truncates a response body for inclusion in an error.
func Snippet(body []byte) string {
	if len(body) <= maxBodySnippet {
		return string(body)
	}
	cut := maxBodySnippet
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return string(body[:cut]) + "..."
}

func IsTransport(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}

func IsLogical(err error) bool {
	var target *LogicalError
	return errors.As(err, &target)
}

// Message returns the text that should be shown to a person for err:
// the remote message for logical errors and a generic line for transport
// failures.
func Message(err error) string {
	var logical *LogicalError
	if errors.As(err, &logical) {
		return logical.Message
	}
	var transport *TransportError
	if errors.As(err, &transport) {
		return fmt.Sprintf("could not reach %s, try again later", transport.Service)
	}
	return err.Error()
}

package grader

import (
	"fmt"
	"strconv"
)

// RequestError reports a failed round trip to the grading API: a transport
// error, a non-200 status, or a body that could not be decoded.
type RequestError struct {
	Endpoint   string
	StatusCode int // 0 when the request never produced a response
	Err        error
}

func (e *RequestError) Error() string {
	msg := "endpoint " + e.Endpoint + " unavailable"
	if e.StatusCode != 0 {
		msg += ": status " + strconv.Itoa(e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RequestError) Unwrap() error { return e.Err }

// SchemaError reports a response whose shape does not match the documented
// API contract.
type SchemaError struct {
	Detail string
}

func (e *SchemaError) Error() string {
	return "invalid response format: " + e.Detail
}

// UnknownStatusError reports a homework status outside the verdict set.
type UnknownStatusError struct {
	Status string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("undocumented homework status %q", e.Status)
}

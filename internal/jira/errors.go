package jira

import "fmt"

// RequestError means the tracker could not be reached at all
// (connection, DNS, TLS, cancelled context).
type RequestError struct {
	URL string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// StatusError means the tracker answered with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API error (status %d) from %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("API error (status %d) from %s: %s", e.StatusCode, e.URL, e.Body)
}

// DecodeError means a response body did not have the expected shape.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

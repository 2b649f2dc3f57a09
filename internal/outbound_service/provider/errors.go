package provider

import "fmt"

// TransportError means the request never produced an HTTP response.
type TransportError struct {
	Channel string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s provider request failed: %v", e.Channel, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UnexpectedStatusError means the provider answered with a status other than 200.
type UnexpectedStatusError struct {
	Channel    string
	StatusCode int
	Body       string
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("%s provider returned unexpected HTTP status %d", e.Channel, e.StatusCode)
}

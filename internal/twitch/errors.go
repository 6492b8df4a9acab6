package twitch

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned for 401 responses.
	ErrUnauthorized = errors.New("no authorization was supplied or the token lacks the required scope")

	// ErrNoResults is returned when a payload carries an empty result list.
	ErrNoResults = errors.New("no streams available")

	// ErrMissingCredentials is returned by NewClient when the token or the
	// client id is blank.
	ErrMissingCredentials = errors.New("missing credentials")
)

// TransportError wraps failures below HTTP: dial, TLS, timeout, body read.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request %s failed, are you connected? %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UnknownChannelError is returned when the API reports a missing channel.
type UnknownChannelError struct {
	Name string
}

func (e *UnknownChannelError) Error() string {
	return fmt.Sprintf("the channel %s does not exist", e.Name)
}

// RequestRejectedError covers every non-success status without a more
// specific mapping.
type RequestRejectedError struct {
	URL    string
	Status int
}

func (e *RequestRejectedError) Error() string {
	return fmt.Sprintf("api %s returned status %d", e.URL, e.Status)
}

// DecodeError is returned when a 2xx body is not valid JSON.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// MalformedEntityError reports a payload element missing a required field.
// Fragment holds the offending JSON value.
type MalformedEntityError struct {
	Field    string
	Fragment any
}

func (e *MalformedEntityError) Error() string {
	fragment, err := json.MarshalIndent(e.Fragment, "", "  ")
	if err != nil {
		fragment = []byte(fmt.Sprintf("%v", e.Fragment))
	}
	return fmt.Sprintf("missing or invalid %q while parsing:\n%s", e.Field, fragment)
}

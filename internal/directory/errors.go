package directory

import "fmt"

// AuthenticationError reports that the identity provider rejected the client credentials.
type AuthenticationError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *AuthenticationError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("directory: token request failed: %d - %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("directory: token request failed: %s", e.Message)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// UnavailableError reports that the contacts query failed.
type UnavailableError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *UnavailableError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("directory: failed to fetch contacts: %d - %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("directory: failed to fetch contacts: %s", e.Message)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotFound is returned by id based loads that yield no data.
var ErrNotFound = errors.New("analysis not found")

// NetworkError reports a request that could not complete.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError reports a non-success status returned by the backend.
// Message holds the backend supplied {"error"} text when there was one.
type ServerError struct {
	Status         int
	Message        string
	AvailableRoles []string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server error: %d %s", e.Status, http.StatusText(e.Status))
}

// Is makes a 404 response match ErrNotFound.
func (e *ServerError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// ParseError reports a malformed, unsupported or oversized resume upload.
type ParseError struct {
	File    string
	Message string
}

func (e *ParseError) Error() string {
	if e.File == "" {
		return "parse resume: " + e.Message
	}
	return fmt.Sprintf("parse resume %q: %s", e.File, e.Message)
}

type errorBody struct {
	Error          string   `json:"error"`
	AvailableRoles []string `json:"available_roles"`
}

// decodeErrorBody reads the {"error"} envelope. ok is false when the body is not structured.
func decodeErrorBody(data []byte) (errorBody, bool) {
	var body errorBody
	if len(strings.TrimSpace(string(data))) == 0 {
		return body, false
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return body, false
	}
	body.Error = strings.TrimSpace(body.Error)
	return body, true
}

func newServerError(status int, data []byte) *ServerError {
	se := &ServerError{Status: status}
	if body, ok := decodeErrorBody(data); ok {
		se.Message = body.Error
		se.AvailableRoles = body.AvailableRoles
	}
	return se
}

// Message returns a human readable text for err suitable for showing in place
// of content. fallback is used for server errors without a message.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var serverErr *ServerError
	var netErr *NetworkError
	var parseErr *ParseError

	switch {
	case errors.As(err, &parseErr):
		return parseErr.Message
	case errors.As(err, &serverErr) && serverErr.Message != "":
		return serverErr.Message
	case errors.Is(err, ErrNotFound):
		return "Analysis not found"
	case errors.As(err, &netErr):
		return "Network error. Please check your connection and try again."
	case fallback != "":
		return fallback
	default:
		return err.Error()
	}
}

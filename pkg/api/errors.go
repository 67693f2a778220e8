package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// StatusError is a non-2xx response. Msg is the server's own message when
// the body carried one.
type StatusError struct {
	Status int
	Method string
	Path   string
	Msg    string
}

func (e *StatusError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("api: %s %s: %d %s", e.Method, e.Path, e.Status, e.Msg)
	}
	return fmt.Sprintf("api: %s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

// Unauthorized reports whether the server rejected the credentials.
func (e *StatusError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// Message returns the server-provided message carried by err, or fallback
// when err has none.
func Message(err error, fallback string) string {
	var se *StatusError
	if errors.As(err, &se) && se.Msg != "" {
		return se.Msg
	}
	return fallback
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Unauthorized()
}

// messageFromBody extracts "msg", then "error", then "message" from a JSON
// error body.
func messageFromBody(raw []byte) string {
	var body struct {
		Msg     string `json:"msg"`
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	for _, s := range []string{body.Msg, body.Error, body.Message} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

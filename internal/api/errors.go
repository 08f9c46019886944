package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Error describes a failed backend call. Status is zero when no response was
// received (connection refused, timeout, DNS).
type Error struct {
	Method  string
	Path    string
	Status  int
	Message string // server-supplied message, if any
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Network reports whether the request never got a response
func (e *Error) Network() bool {
	return e != nil && e.Status == 0
}

// ShapeError reports a 2xx response whose body does not have the expected
// shape for an object endpoint. Sequence endpoints never return it; they
// degrade to an empty slice instead.
type ShapeError struct {
	Path string
	Want string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("unexpected response from %s: expected %s", e.Path, e.Want)
}

// ServerMessage extracts the backend-supplied message from err, if any
func ServerMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// IsNetworkError reports whether err is a transport-level failure
func IsNetworkError(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Network()
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// serverMessage pulls a human-readable message out of an error body.
// FastAPI-style backends use {"detail": "..."} or a validation list
// {"detail": [{"msg": "..."}]}; others use message or error.
func serverMessage(body []byte) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return ""
	}
	res := gjson.ParseBytes(body)
	if !res.IsObject() {
		return ""
	}

	detail := res.Get("detail")
	switch {
	case detail.Type == gjson.String:
		return strings.TrimSpace(detail.String())
	case detail.IsArray():
		var msgs []string
		for _, item := range detail.Array() {
			if m := item.Get("msg").String(); m != "" {
				msgs = append(msgs, m)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}

	for _, key := range []string{"message", "error"} {
		if v := res.Get(key); v.Type == gjson.String && v.String() != "" {
			return strings.TrimSpace(v.String())
		}
	}
	return ""
}

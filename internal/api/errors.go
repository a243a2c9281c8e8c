package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Tiliavir/standup/internal/envelope"
	"github.com/Tiliavir/standup/internal/model"
)

// NetworkError means the request never produced a response.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error on %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServiceError is a response with a non-success status.
type ServiceError struct {
	Status    int
	Message   string
	RequestID string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("service error %d: %s", e.Status, e.Message)
}

// Message converts any error the core can produce into the single line
// shown to the user and stored in the state container.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var (
		netErr *NetworkError
		svcErr *ServiceError
		decErr *envelope.DecodeError
		valErr *model.ValidationError
	)
	switch {
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	case errors.As(err, &netErr):
		return "network error: check your connection"
	case errors.As(err, &svcErr):
		return svcErr.Message
	case errors.As(err, &decErr):
		return envelope.ErrInvalidResponseFormat.Error() + ": " + decErr.Reason
	case errors.As(err, &valErr):
		return valErr.Error()
	default:
		return err.Error()
	}
}

// serviceMessage pulls a conventional message/error string out of an error
// body, looking at the top level and under data.
func serviceMessage(status int, body []byte) string {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err == nil {
		if msg := pickMessage(top); msg != "" {
			return msg
		}
		if data, ok := top["data"]; ok {
			var inner map[string]json.RawMessage
			if err := json.Unmarshal(data, &inner); err == nil {
				if msg := pickMessage(inner); msg != "" {
					return msg
				}
			}
		}
	}
	return fmt.Sprintf("status %d", status)
}

func pickMessage(m map[string]json.RawMessage) string {
	for _, key := range []string{"message", "error"} {
		raw, ok := m[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

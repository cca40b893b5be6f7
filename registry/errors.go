package registry

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/buger/jsonparser"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	// The package already exists, or was otherwise refused by the repository.
	ErrConflict  = errors.New("conflict")
	ErrTransport = errors.New("transport error")
)

const maxErrorBodyLength = 512

// Error is returned by every Client call that failed.
// errors.Is matches its Sentinel and, for transport failures, its Cause.
type Error struct {
	Sentinel   error
	Op         string
	StatusCode int
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("packagecloud %s: %s", e.Op, e.Cause)
	}
	return fmt.Sprintf("packagecloud %s: %d %s: %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Sentinel}
	}
	return []error{e.Sentinel, e.Cause}
}

func transportError(op string, cause error) *Error {
	return &Error{Sentinel: ErrTransport, Op: op, Cause: cause}
}

func statusError(op string, statusCode int, body []byte) *Error {
	return &Error{Sentinel: classifyStatus(statusCode), Op: op, StatusCode: statusCode, Message: errorMessage(body)}
}

func classifyStatus(statusCode int) error {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return ErrConflict
	default:
		return ErrTransport
	}
}

// errorMessage extracts a readable message from a packagecloud error body.
// Both {"error": "..."} and validation errors shaped like {"filename": ["has already been taken"]} are understood.
func errorMessage(body []byte) string {
	if message, err := jsonparser.GetString(body, "error"); err == nil {
		return message
	}
	var messages []string
	err := jsonparser.ObjectEach(body, func(key []byte, value []byte, dataType jsonparser.ValueType, _ int) error {
		switch dataType {
		case jsonparser.Array:
			_, err := jsonparser.ArrayEach(value, func(item []byte, _ jsonparser.ValueType, _ int, _ error) {
				messages = append(messages, string(key)+" "+string(item))
			})
			return err
		case jsonparser.String:
			messages = append(messages, string(key)+" "+string(value))
		}
		return nil
	})
	if err == nil && len(messages) > 0 {
		sort.Strings(messages)
		return strings.Join(messages, "; ")
	}
	message := strings.TrimSpace(string(body))
	if len(message) > maxErrorBodyLength {
		message = message[:maxErrorBodyLength] + "..."
	}
	return message
}

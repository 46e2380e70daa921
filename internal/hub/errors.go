// ABOUTME: Error taxonomy for hub operations as sentinel errors plus APIError
// ABOUTME: Wire error bodies carry a machine-readable code that maps onto sentinels

package hub

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Sentinel errors for the hub API. Callers branch with errors.Is; the absence
// of a prior resource (ErrNotFound on load) is an expected outcome for the
// reconciler, not a failure.
var (
	// ErrConnection indicates the hub endpoint is unreachable or rejected the
	// handshake. Fatal to a publish: no retry is attempted at this layer.
	ErrConnection = errors.New("hub connection failed")

	// ErrNotFound indicates no agent exists under the requested id.
	ErrNotFound = errors.New("agent not found")

	// ErrConflict indicates an agent with the requested id already exists.
	ErrConflict = errors.New("agent already exists")

	// ErrValidation indicates the hub could not resolve a tool, strategy, or
	// trigger named by the blueprint, or a config failed its schema.
	ErrValidation = errors.New("blueprint validation failed")

	// ErrInvalidTransition indicates a state change the agent state machine
	// does not permit.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidHandle indicates use of a local handle after its remote
	// resource was deleted through it.
	ErrInvalidHandle = errors.New("agent handle no longer valid")
)

// Error codes carried in hub error response bodies.
const (
	CodeNotFound          = "not_found"
	CodeAgentExists       = "agent_exists"
	CodeValidation        = "validation"
	CodeInvalidTransition = "invalid_transition"
	CodeBadRequest        = "bad_request"
	CodeInternal          = "internal"
)

// APIError is a structured failure returned by the hub API. It unwraps to the
// matching sentinel so errors.Is(err, ErrNotFound) and friends work.
type APIError struct {
	Status  int    // HTTP status code
	Code    string // machine-readable code from the response body, may be empty
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("hub error (%d %s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("hub error (%d): %s", e.Status, e.Message)
}

// Unwrap maps the error code (or, failing that, the HTTP status) onto the
// sentinel taxonomy.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case CodeNotFound:
		return ErrNotFound
	case CodeAgentExists:
		return ErrConflict
	case CodeValidation:
		return ErrValidation
	case CodeInvalidTransition:
		return ErrInvalidTransition
	}
	switch e.Status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusUnprocessableEntity:
		return ErrValidation
	}
	return nil
}

// errorBody is the JSON error envelope the hub returns on non-2xx responses.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// errorFromResponse extracts an APIError from a non-2xx response.
func errorFromResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var wire errorBody
	if json.Unmarshal(body, &wire) == nil && wire.Error != "" {
		return &APIError{Status: resp.StatusCode, Code: wire.Code, Message: wire.Error}
	}

	return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
}

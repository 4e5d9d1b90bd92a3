package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// Auth-specific sentinel errors
var (
	ErrMissingToken  = errors.New("missing token")
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenInvalid  = errors.New("token invalid")
	ErrClaimsInvalid = errors.New("token claims invalid")
)

// ProblemDetails implements RFC 7807 Problem Details for HTTP APIs
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// Additional fields for extensibility
	Extensions map[string]interface{} `json:"-"`
}

// Render implements the render.Renderer interface
func (pd *ProblemDetails) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, pd.Status)
	return nil
}

// MarshalJSON custom marshaler to include extensions
func (pd *ProblemDetails) MarshalJSON() ([]byte, error) {
	data := make(map[string]interface{})

	data["type"] = pd.Type
	data["title"] = pd.Title
	data["status"] = pd.Status

	if pd.Detail != "" {
		data["detail"] = pd.Detail
	}
	if pd.Instance != "" {
		data["instance"] = pd.Instance
	}

	for k, v := range pd.Extensions {
		data[k] = v
	}

	return json.Marshal(data)
}

// NewProblemDetails creates a new RFC 7807 compliant error
func NewProblemDetails(status int, problemType, title, detail, instance string) *ProblemDetails {
	return &ProblemDetails{
		Type:       problemType,
		Title:      title,
		Status:     status,
		Detail:     detail,
		Instance:   instance,
		Extensions: make(map[string]interface{}),
	}
}

// WithExtension adds an extension field to the problem details
func (pd *ProblemDetails) WithExtension(key string, value interface{}) *ProblemDetails {
	pd.Extensions[key] = value
	return pd
}

// MapAuthError maps token-validation errors to HTTP problem details
func MapAuthError(err error, traceID string) render.Renderer {
	instance := fmt.Sprintf("/api/auth#trace-%s", traceID)

	switch {
	case errors.Is(err, ErrMissingToken):
		return NewProblemDetails(
			http.StatusUnauthorized,
			"/errors/missing-token",
			"Missing Token",
			"No bearer token was provided with the request.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "MISSING_TOKEN")

	case errors.Is(err, ErrTokenExpired):
		return NewProblemDetails(
			http.StatusUnauthorized,
			"/errors/token-expired",
			"Token Expired",
			"The provided token has expired. Please authenticate again.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "TOKEN_EXPIRED")

	case errors.Is(err, ErrTokenInvalid), errors.Is(err, ErrClaimsInvalid):
		return NewProblemDetails(
			http.StatusUnauthorized,
			"/errors/token-invalid",
			"Invalid Token",
			"The provided token is invalid or malformed.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "TOKEN_INVALID")

	default:
		return NewProblemDetails(
			http.StatusInternalServerError,
			"/errors/internal-error",
			"Internal Server Error",
			"An unexpected error occurred while processing your request.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "INTERNAL_ERROR")
	}
}

package api

import (
	"encoding/json"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// EnvelopeVersion is the current response envelope version.
const EnvelopeVersion = 1

// Envelope is the wrapper around every JSON response body.
type Envelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer is a huma transformer that wraps response bodies.
// Errors keep the short "error" string for older clients alongside the
// structured code, message and details.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	switch body := v.(type) {
	case *Envelope:
		return body, nil
	case *APIError:
		return errorEnvelope(body), nil
	}
	return &Envelope{Version: EnvelopeVersion, Success: true, Data: v}, nil
}

func errorEnvelope(e *APIError) *Envelope {
	return &Envelope{
		Version: EnvelopeVersion,
		Success: false,
		Error:   e.Message,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	}
}

// writeError writes an error envelope from plain net/http middleware.
func writeError(w http.ResponseWriter, e *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.status)
	_ = json.NewEncoder(w).Encode(errorEnvelope(e))
}

package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is bumped only on breaking changes to the envelope
// structure itself. Clients check it before decoding.
const envelopeVersion = 1

// envelope is the uniform wire shape for every response.
//
// Success: {v, success: true, data}. Simple errors use a bare string in
// the error field; structured errors carry code/message/details instead.
type envelope struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps every response body in the standard envelope.
// Registered as a huma transformer so handlers return plain DTOs.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		if apiErr.Code != "" {
			return &envelope{
				V:       envelopeVersion,
				Success: false,
				Code:    apiErr.Code,
				Message: apiErr.Message,
				Details: apiErr.Details,
			}, nil
		}
		return &envelope{
			V:       envelopeVersion,
			Success: false,
			Error:   apiErr.Message,
		}, nil
	}

	return &envelope{
		V:       envelopeVersion,
		Success: true,
		Data:    v,
	}, nil
}

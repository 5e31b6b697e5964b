package sync

import (
	"context"
	"encoding/json"
)

// CallResult is the normalized envelope of one ERP call. Success mirrors
// the ERP's Result discriminator; a business rejection arrives here as
// Success=false with the ERP's failure reason, never as a Go error.
type CallResult struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Gateway is the port to the ERP's data endpoint. Implementations obtain a
// valid credential before each call, tag the request with the method
// identifier, and normalize the response envelope. Transport and credential
// failures return wrapped ErrTransport/ErrCredentialAcquisition; any
// response lacking the expected envelope normalizes to an unsuccessful
// CallResult rather than an error. Gateways never retry.
type Gateway interface {
	// Call issues one ERP operation with the given JSON-marshalable payload.
	Call(ctx context.Context, method Method, payload any) (*CallResult, error)

	// Probe checks end-to-end connectivity by acquiring a credential.
	// It reports success plus a diagnostic message, never an error.
	Probe(ctx context.Context) (bool, string)
}

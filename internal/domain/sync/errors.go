// Package sync defines the orchestration domain: the gateway port every ERP
// call goes through, the canonical outcome shape returned by every public
// sync operation, status resolution for order updates, and the audit/
// idempotency contracts around webhook processing.
package sync

import "errors"

// Sentinel errors for ERP communication failures. Business rejections are
// not errors; they travel as CallResult values.
var (
	// ErrTransport indicates a network or HTTP level failure reaching the ERP.
	ErrTransport = errors.New("sync: erp transport failure")

	// ErrCredentialAcquisition indicates the token issuance call failed or
	// returned a response without a usable token.
	ErrCredentialAcquisition = errors.New("sync: credential acquisition failed")

	// ErrInvalidConfig indicates the ERP connection settings are unusable.
	ErrInvalidConfig = errors.New("sync: invalid erp configuration")
)

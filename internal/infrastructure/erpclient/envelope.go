package erpclient

import (
	"encoding/json"

	syncdomain "github.com/erplink/bridge/internal/domain/sync"
)

// envelope is the ERP's response wrapper on every data-endpoint call.
type envelope struct {
	Result        string          `json:"Result"`
	Data          json.RawMessage `json:"Data"`
	FailureReason string          `json:"FailureReason"`
}

const (
	// resultSuccess is the envelope's success discriminator value.
	resultSuccess = "SUCCESS"

	// malformedResponseError is the error message for any body lacking the
	// expected envelope.
	malformedResponseError = "invalid response format"
)

// parseEnvelope normalizes a raw response body into a CallResult. It never
// fails: a body that is not a recognizable envelope becomes an unsuccessful
// result with the malformed-response message.
func parseEnvelope(body []byte) *syncdomain.CallResult {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil || env.Result == "" {
		return &syncdomain.CallResult{Success: false, Error: malformedResponseError}
	}
	if env.Result != resultSuccess {
		return &syncdomain.CallResult{Success: false, Error: env.FailureReason}
	}
	return &syncdomain.CallResult{Success: true, Data: env.Data}
}

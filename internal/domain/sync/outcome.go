package sync

// EntityKind names the storefront entity a sync invocation acted on.
type EntityKind string

const (
	EntityOrder     EntityKind = "order"
	EntityCustomer  EntityKind = "customer"
	EntityRefund    EntityKind = "refund"
	EntityInventory EntityKind = "inventory"
)

// IsValid checks if the kind is one the bridge synchronizes.
func (k EntityKind) IsValid() bool {
	switch k {
	case EntityOrder, EntityCustomer, EntityRefund, EntityInventory:
		return true
	}
	return false
}

// String returns the string representation of the entity kind.
func (k EntityKind) String() string {
	return string(k)
}

// Outcome is the aggregated result of one sync invocation. Every public
// entry point returns an Outcome so the webhook endpoint can always produce
// a deterministic acknowledgment; failures never escape as panics.
type Outcome struct {
	Success    bool       `json:"success"`
	EntityKind EntityKind `json:"entity_kind"`
	EntityID   string     `json:"entity_id"`
	Reference  string     `json:"reference,omitempty"`
	Message    string     `json:"message,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// SuccessOutcome builds a successful outcome for the given entity.
func SuccessOutcome(kind EntityKind, entityID string) *Outcome {
	return &Outcome{Success: true, EntityKind: kind, EntityID: entityID}
}

// FailureOutcome builds a failed outcome carrying the error message.
func FailureOutcome(kind EntityKind, entityID, errMsg string) *Outcome {
	return &Outcome{Success: false, EntityKind: kind, EntityID: entityID, Error: errMsg}
}

// WithReference attaches the ERP-assigned reference and returns the outcome.
func (o *Outcome) WithReference(ref string) *Outcome {
	o.Reference = ref
	return o
}

// WithMessage attaches a human-readable note and returns the outcome.
func (o *Outcome) WithMessage(msg string) *Outcome {
	o.Message = msg
	return o
}

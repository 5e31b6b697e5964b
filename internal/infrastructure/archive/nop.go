package archive

import "context"

// NopArchiver discards every payload. It stands in for the real archive
// when archiving is disabled in configuration.
type NopArchiver struct{}

// NewNopArchiver creates a NopArchiver
func NewNopArchiver() *NopArchiver {
	return &NopArchiver{}
}

// Ensure NopArchiver implements PayloadArchiver
var _ PayloadArchiver = (*NopArchiver)(nil)

// Archive is a no-op that always succeeds
func (n *NopArchiver) Archive(ctx context.Context, topic, eventID string, payload []byte) error {
	return nil
}

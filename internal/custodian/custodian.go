package custodian

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrTransferFailed indicates the external asset mover rejected or failed the
// requested movement.
var ErrTransferFailed = errors.New("external transfer failed")

// Custodian represents the connector to the external system that actually
// holds and moves asset value. Credit pulls value from a user's external
// holdings into platform custody; Release pushes custody-held value out to a
// destination. Both are treated as fallible remote calls.
type Custodian interface {
	Credit(ctx context.Context, userID, assetID string, amount int64) (Receipt, error)
	Release(ctx context.Context, destination, assetID string, amount int64) (Receipt, error)
}

// Receipt captures the external system's confirmation of a movement.
type Receipt struct {
	Reference string
	Status    string
}

// Static simulates an always-approving custodian. Used for development and as
// the default when no real connector is configured.
type Static struct{}

// Credit approves the inbound movement with a synthetic reference.
func (Static) Credit(_ context.Context, _, _ string, _ int64) (Receipt, error) {
	return Receipt{Reference: uuid.NewString(), Status: "settled"}, nil
}

// Release approves the outbound movement with a synthetic reference.
func (Static) Release(_ context.Context, _, _ string, _ int64) (Receipt, error) {
	return Receipt{Reference: uuid.NewString(), Status: "settled"}, nil
}

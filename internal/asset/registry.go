package asset

import (
	"context"
	"errors"
)

// ErrUnsupported indicates an operation named an asset the registry does not
// currently accept.
var ErrUnsupported = errors.New("unsupported asset")

// Registry tracks which asset identifiers the ledger accepts. Every operation
// that names an asset checks it here first.
type Registry interface {
	IsSupported(ctx context.Context, assetID string) (bool, error)
	Add(ctx context.Context, assetID string) error
	Remove(ctx context.Context, assetID string) error
	List(ctx context.Context) ([]string, error)
}

// Require returns ErrUnsupported unless the asset is currently accepted.
func Require(ctx context.Context, r Registry, assetID string) error {
	ok, err := r.IsSupported(ctx, assetID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnsupported
	}
	return nil
}

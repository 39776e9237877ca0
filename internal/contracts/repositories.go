package contracts

import (
	"context"
	"errors"
)

// ErrNotFound is returned by repositories when no row matches
var ErrNotFound = errors.New("not found")

// SnapshotWriter stores imported division snapshots
type SnapshotWriter interface {
	SaveSnapshot(ctx context.Context, snapshot *Snapshot) error
}

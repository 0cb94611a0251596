package core

import (
	"context"
)

// ShutdownFunc is the cleanup handler signature shutdown.Manager.Register
// expects: syncing the logger, closing the blob store client, stopping the
// dashboard server. Implementations should respect the context deadline,
// return nil on success, and be idempotent.
type ShutdownFunc func(ctx context.Context) error

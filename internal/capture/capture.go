// Package capture produces raw table frames and extracts snapshots from
// them. The only built-in source is the simulator; a real screen or site
// integration would implement Source and plug in unchanged.
package capture

import (
	"context"
	"time"
)

// #region types

// RawFrame is one captured observation of the table, as raw bytes.
type RawFrame struct {
	Data       []byte
	CapturedAt time.Time
}

// Source yields table frames. Capture blocks until a frame is available or
// the context is done.
type Source interface {
	Capture(ctx context.Context) (RawFrame, error)
}

// #endregion types

// Package storage persists generated image bytes and hands back stable URLs.
package storage

import (
	"context"
	"fmt"
	"time"
)

// Store persists image bytes under a filename and returns a URL the caller
// can embed directly in result documents. Implementations must be safe for
// concurrent writes to distinct filenames.
type Store interface {
	Save(ctx context.Context, filename string, data []byte) (string, error)
}

// Filename builds the canonical asset name for one candidate of a run. The
// timestamp is fixed once per run so all candidates of a run sort together;
// the 1-based index disambiguates them.
func Filename(ts time.Time, index int) string {
	return fmt.Sprintf("morph_%s_%06d_%02d.png", ts.Format("20060102_150405"), ts.Nanosecond()/1000, index)
}

package interfaces

import "context"

// LaborStatusLookup is the read-only collaborator for repair-tracker labor
// status, keyed by work order and ISDT (item#subitem#damage#labortype).
// ok=false means no status exists yet; the caller falls back to defaults.

type LaborStatusLookup interface {
	Find(ctx context.Context, workOrderKey, isdtKey string) (map[string]any, bool, error)
}

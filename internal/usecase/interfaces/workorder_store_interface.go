package interfaces

import (
	"context"

	"github.com/MayureshM/rpp-workorder/internal/domain/entities"
)

// WorkOrderStore abstracts the aggregate table for the event handlers.
//
// Apply is the only mutation path for guarded attributes: it issues the
// timestamp-conditioned merge described by the plan and reports whether the
// write landed, was rejected as stale, or had to create the nested container
// first. Callers treat WriteSkippedStale as success.
//
// Get returns nil (no error) when the record is absent. QueryPrefix returns
// all records under a partition whose sort key begins with the prefix.

type WorkOrderStore interface {
	Apply(ctx context.Context, key entities.Key, plan entities.WritePlan) (entities.WriteOutcome, error)
	Get(ctx context.Context, key entities.Key) (map[string]any, error)
	QueryPrefix(ctx context.Context, pk, skPrefix string) ([]map[string]any, error)
	Delete(ctx context.Context, key entities.Key) error
	FindByWorkOrderNumber(ctx context.Context, workOrderNumber, siteID string) ([]map[string]any, error)
}

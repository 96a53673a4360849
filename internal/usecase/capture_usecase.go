package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MayureshM/rpp-workorder/internal/domain/entities"
	"github.com/MayureshM/rpp-workorder/internal/domain/normalize"
)

// handleCapture projects a consignment capture event twice: onto the
// consignment entity record and onto the summary record, so summary readers
// see the capture status without a second fetch.
func (u *ProcessEventUseCase) handleCapture(ctx context.Context, ev entities.Event) error {
	id, err := u.resolveIdentity(ctx, ev.New)
	if err != nil {
		return err
	}
	order := normalize.Fields(normalize.MapValue(ev.New, "order"), nil)

	fields := map[string]any{
		"capture_status":              order["status"],
		"capture_completed_timestamp": order["completed_timestamp"],
		"capture_updated":             json.Number(normalize.EpochNow(u.now())),
	}

	var failures []error

	record := id.baseRecord("consignment")
	for k, v := range fields {
		record[k] = v
	}
	plan := entities.BuildWritePlan(record, nil, "", entities.DefaultGuardAttr, ev.Updated)
	if _, err := u.store.Apply(ctx, entities.EntityKey(id.workOrderKey, "consignment"), plan); err != nil {
		failures = append(failures, fmt.Errorf("consignment record: %w", err))
	}

	summary := id.baseRecord("summary")
	for k, v := range fields {
		summary[k] = v
	}
	plan = entities.BuildWritePlan(summary, nil, "", entities.DefaultGuardAttr, ev.Updated)
	if _, err := u.store.Apply(ctx, entities.SummaryKey(id.workOrderKey), plan); err != nil {
		failures = append(failures, fmt.Errorf("summary capture fields: %w", err))
	}

	return joinFailures(failures)
}

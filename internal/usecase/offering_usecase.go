package usecase

import (
	"context"
	"fmt"

	"github.com/MayureshM/rpp-workorder/internal/domain/entities"
	"github.com/MayureshM/rpp-workorder/internal/domain/normalize"
)

// offeringOverrides are canonical-name exceptions for offering payloads.
// buyeRepId is kept verbatim; a blind snake_case pass would mangle the
// upstream typo and split readers from writers.
var offeringOverrides = map[string]string{
	"otherFee":      "buyer_adj",
	"buyerDealerid": "buyer_number",
	"buyeRepId":     "buyeRepId",
}

// handleOffering writes the offering entity record and mirrors the same
// fields into the nested offering container on the summary record. Attributes
// dropped upstream between the old and new images are removed here too, so a
// fee cleared at the auction block disappears from both projections.
func (u *ProcessEventUseCase) handleOffering(ctx context.Context, ev entities.Event) error {
	id, err := u.resolveIdentity(ctx, ev.New)
	if err != nil {
		return err
	}

	raw := offeringPayload(ev.New)
	if len(raw) == 0 {
		return fmt.Errorf("offering event without payload: %w", entities.ErrValidation)
	}
	fields := normalize.Fields(raw, offeringOverrides)
	delete(fields, "consignment")
	if oid := normalize.ToString(ev.New["offering_id"]); oid != "" {
		fields["offering_id"] = oid
	}
	removed := normalize.RemovedAttributes(raw, offeringPayload(ev.Old), offeringOverrides)

	var failures []error

	record := id.baseRecord("offering")
	for k, v := range fields {
		record[k] = v
	}
	record["key_src"] = keySource(ev)
	plan := entities.BuildWritePlan(record, removed, "", entities.DefaultGuardAttr, ev.Updated)
	if _, err := u.store.Apply(ctx, entities.EntityKey(id.workOrderKey, "offering"), plan); err != nil {
		failures = append(failures, fmt.Errorf("offering record: %w", err))
	}

	// summary projection under its own container and guard, so offering
	// updates never contend with the summary's shared guard
	plan = entities.BuildWritePlan(fields, removed, "offering", "offering_updated", ev.Updated)
	if _, err := u.store.Apply(ctx, entities.SummaryKey(id.workOrderKey), plan); err != nil {
		failures = append(failures, fmt.Errorf("summary offering container: %w", err))
	}

	return joinFailures(failures)
}

// offeringPayload accepts both upstream shapes: auction events nest the
// offering under "order", vehicle feed events under "pfvehicle".
func offeringPayload(img map[string]any) map[string]any {
	if m := normalize.MapValue(img, "order"); len(m) > 0 {
		return m
	}
	return normalize.MapValue(img, "pfvehicle")
}

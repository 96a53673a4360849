package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/MayureshM/rpp-workorder/internal/domain/entities"
	"github.com/MayureshM/rpp-workorder/internal/domain/normalize"
)

// workCreditCategories maps the upstream event type to the sort-key category
// and the stored entity type.
var workCreditCategories = map[string]struct {
	category   string
	entityType string
}{
	"WORKCREDIT.RETAILRECON.UPDATED":                {"damage", "workcredit"},
	"PEDASHBOARD.LABOR.CONDITION.WORKCREDIT.UPDATE": {"damage", "workcredit"},
	"WORKCREDITFEE.RETAILRECON.UPDATED":             {"fee", "workcreditfee"},
	"PEDASHBOARD.LABOR.FEE.WORKCREDIT.UPDATE":       {"fee", "workcreditfee"},
}

// handleWorkCredit stores a labor work-credit under a category-keyed sort key
// (workcredit:damage#<labor> or workcredit:fee#<labor>).
func (u *ProcessEventUseCase) handleWorkCredit(ctx context.Context, ev entities.Event) error {
	id, err := u.resolveIdentity(ctx, ev.New)
	if err != nil {
		return err
	}

	labor := normalize.ToString(ev.New["labor"])
	if labor == "" {
		return fmt.Errorf("work credit without labor: %w", entities.ErrValidation)
	}
	eventType := normalize.ToString(ev.New["event_type"])
	mapping, ok := workCreditCategories[eventType]
	if !ok {
		u.log.Warn("unrecognized work credit event type, skipping",
			zap.String("event_type", eventType), zap.String("work_order_key", id.workOrderKey))
		return nil
	}

	record := id.baseRecord(mapping.entityType)
	for k, v := range normalize.Fields(ev.New, nil) {
		record[k] = v
	}
	record["entity_type"] = mapping.entityType

	// fee credits carry the work-order number inside the consignment reference
	if mapping.entityType == "workcreditfee" {
		ref := normalize.MapValue(normalize.MapValue(ev.New, "consignment"), "referenceId")
		if won := normalize.ToString(ref["workOrderNumber"]); won != "" {
			record["work_order_number"] = won
		}
	}

	plan := entities.BuildWritePlan(record, nil, "", entities.DefaultGuardAttr, ev.Updated)
	key := entities.WorkCreditKey(id.workOrderKey, mapping.category, labor)
	outcome, err := u.store.Apply(ctx, key, plan)
	if err != nil {
		return fmt.Errorf("work credit %s: %w", key.SK, err)
	}
	u.log.Debug("work credit stored",
		zap.String("pk", key.PK), zap.String("sk", key.SK), zap.String("outcome", outcome.String()))
	return nil
}

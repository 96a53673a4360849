package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/MayureshM/rpp-workorder/internal/domain/entities"
	"github.com/MayureshM/rpp-workorder/internal/domain/normalize"
)

// handleLaborStatus folds a repair-tracker status change into the damage
// record it belongs to. Labor-status writes are guarded per labor type
// ("repair_updated", "paint_updated", "part_updated") instead of the shared
// guard, so a late repair status never blocks a paint status and vice versa.
func (u *ProcessEventUseCase) handleLaborStatus(ctx context.Context, ev entities.Event) error {
	workOrderKey := normalize.ToString(ev.New["pk"])
	rawSK := normalize.ToString(ev.New["sk"])
	parts := strings.Split(rawSK, "#")
	if workOrderKey == "" || len(parts) != 4 {
		// anything else is an ad-hoc damage key this handler does not own
		u.log.Info("labor status key not in item#sub#damage#type form, skipping",
			zap.String("pk", workOrderKey), zap.String("sk", rawSK))
		return nil
	}
	itemCode, subItemCode, damageCode := parts[0], parts[1], parts[2]
	laborType := strings.ToLower(parts[3])

	status := make(map[string]any, len(ev.New))
	for k, v := range ev.New {
		if k != "pk" && k != "sk" {
			status[k] = v
		}
	}
	current := normalize.MapValue(status, "current_status")
	if len(current) == 0 {
		return fmt.Errorf("labor status %s without current_status: %w", rawSK, entities.ErrValidation)
	}

	severityCode := normalize.ToString(status["severity_code"])
	actionCode := normalize.ToString(status["action_code"])
	if severityCode == "" {
		severityCode, actionCode = u.damageCodesFromStore(ctx, workOrderKey, itemCode, subItemCode, damageCode)
	}

	isdsa, idsa := laborStatusDamageSKs(itemCode, subItemCode, damageCode, severityCode, actionCode)
	pk := entities.WorkOrderPK(workOrderKey)

	sk := isdsa
	damageRecord, err := u.store.Get(ctx, entities.Key{PK: pk, SK: isdsa})
	if err != nil {
		return fmt.Errorf("read damage %s: %w", isdsa, err)
	}
	if damageRecord == nil {
		shortRecord, err := u.store.Get(ctx, entities.Key{PK: pk, SK: idsa})
		if err != nil {
			return fmt.Errorf("read damage %s: %w", idsa, err)
		}
		if shortRecord != nil && normalize.ToString(shortRecord["sub_item_code"]) == subItemCode {
			sk, damageRecord = idsa, shortRecord
		}
	}
	if damageRecord == nil {
		u.log.Warn("no damage record for labor status, skipping",
			zap.String("pk", pk), zap.String("sk", isdsa))
		return nil
	}

	fields := map[string]any{
		laborType + "_status": normalize.ToString(current["labor_status"]),
		"updated_date":        normalize.ToString(current["date"]),
		"source":              normalize.ToString(current["source"]),
		// typed as a number: "updated" doubles as the shared guard on damage
		// records, and guard comparisons are numeric
		"updated": json.Number(normalize.EpochNow(u.now())),
	}
	if by := normalize.ToString(current["updated_by"]); by != "" {
		fields["updated_by"] = by
	}
	for _, charge := range []string{"charge_l_status", "charge_p_status"} {
		if v := normalize.ToString(status[charge]); v != "" {
			fields[charge] = v
		} else {
			fields[charge] = entities.RemoveSentinel
		}
	}

	merged := make(map[string]any, len(damageRecord)+len(fields))
	for k, v := range damageRecord {
		merged[k] = v
	}
	for k, v := range fields {
		if v == entities.RemoveSentinel {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	fields["repaired"] = overallDamageStatus(merged)

	guard := ev.Updated
	if g, err := normalize.CanonicalTimestamp(status["updated"]); err == nil {
		guard = g
	}

	plan := entities.BuildWritePlan(fields, nil, "", laborType+"_updated", guard)
	outcome, err := u.store.Apply(ctx, entities.Key{PK: pk, SK: sk}, plan)
	if err != nil {
		return fmt.Errorf("apply labor status %s: %w", sk, err)
	}
	u.log.Debug("labor status applied",
		zap.String("pk", pk), zap.String("sk", sk),
		zap.String("labor_type", laborType), zap.String("outcome", outcome.String()))
	return nil
}

// damageCodesFromStore backfills missing severity and action codes from a
// stored damage record sharing the item, sub-item and damage codes.
func (u *ProcessEventUseCase) damageCodesFromStore(ctx context.Context, workOrderKey, itemCode, subItemCode, damageCode string) (severityCode, actionCode string) {
	prefix := entities.DamageSKPrefix + strings.ToUpper(itemCode+"#"+subItemCode+"#"+damageCode+"#")
	rows, err := u.store.QueryPrefix(ctx, entities.WorkOrderPK(workOrderKey), prefix)
	if err != nil {
		u.log.Warn("damage code backfill query failed",
			zap.String("work_order_key", workOrderKey), zap.Error(err))
		return "", ""
	}
	if len(rows) == 0 {
		return "", ""
	}
	return normalize.ToString(rows[0]["severity_code"]), normalize.ToString(rows[0]["action_code"])
}

// laborStatusDamageSKs builds the full and the legacy short damage sort keys,
// appending the optional trailing codes only when present.
func laborStatusDamageSKs(itemCode, subItemCode, damageCode, severityCode, actionCode string) (isdsa, idsa string) {
	long := []string{itemCode, subItemCode}
	short := []string{itemCode}
	for _, code := range []string{damageCode, severityCode, actionCode} {
		if code == "" {
			continue
		}
		long = append(long, code)
		short = append(short, code)
	}
	isdsa = entities.DamageSKPrefix + strings.ToUpper(strings.Join(long, "#"))
	idsa = entities.DamageSKPrefix + strings.ToUpper(strings.Join(short, "#"))
	return isdsa, idsa
}

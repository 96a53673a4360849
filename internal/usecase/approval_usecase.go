package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/MayureshM/rpp-workorder/internal/domain/entities"
	"github.com/MayureshM/rpp-workorder/internal/domain/normalize"
)

// handleApproval is the multi-entity fan-out: one approval event becomes the
// approval entity record, a reconciled set of damage child records (each
// exploded into labor-type rows), first-write tire records, and an
// approval-summary snapshot. Children are written independently; one failing
// child never aborts its siblings, failures are collected and surfaced once.
func (u *ProcessEventUseCase) handleApproval(ctx context.Context, ev entities.Event) error {
	id, err := u.resolveIdentity(ctx, ev.New)
	if err != nil {
		return err
	}
	pk := entities.WorkOrderPK(id.workOrderKey)
	order := normalize.MapValue(ev.New, "order")
	updatedBy := normalize.ToString(order["updatedBy"])

	var failures []error

	if err := u.storeApprovalRecord(ctx, ev, id, order); err != nil {
		failures = append(failures, fmt.Errorf("approval record: %w", err))
	}

	if err := u.reconcileDamages(ctx, ev, id, updatedBy); err != nil {
		failures = append(failures, err)
	}

	for _, raw := range normalize.ListValue(order, "condition", "tires") {
		tire, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if err := u.storeTireRecord(ctx, ev, id, tire); err != nil {
			u.log.Error("tire record write failed",
				zap.String("work_order_key", id.workOrderKey), zap.Error(err))
			failures = append(failures, fmt.Errorf("tire record: %w", err))
		}
	}

	completedOn := normalize.ToString(order["updatedOn"])
	if err := u.writeApprovalSummary(ctx, id, pk, completedOn, updatedBy, ev.Updated); err != nil {
		failures = append(failures, fmt.Errorf("approval summary: %w", err))
	}

	return joinFailures(failures)
}

// storeApprovalRecord writes the approval entity record: the order payload
// minus the damage and tire collections, which live as child records.
func (u *ProcessEventUseCase) storeApprovalRecord(ctx context.Context, ev entities.Event, id identity, order map[string]any) error {
	record := id.baseRecord("approval")
	for k, v := range normalize.Fields(order, nil) {
		record[k] = v
	}
	if condition, ok := record["condition"].(map[string]any); ok {
		trimmed := make(map[string]any, len(condition))
		for k, v := range condition {
			if k == "damages" || k == "tires" {
				continue
			}
			trimmed[k] = v
		}
		record["condition"] = trimmed
	}
	delete(record, "consignment")
	record["key_src"] = keySource(ev)

	if createdOn := normalize.ToString(order["createdOn"]); createdOn != "" {
		record["initial_approval_date"] = createdOn
	}
	if materialChange(ev.New, ev.Old) {
		if updatedOn := normalize.ToString(order["updatedOn"]); updatedOn != "" {
			record["recent_approval_date"] = updatedOn
		}
	}

	plan := entities.BuildWritePlan(record, nil, "", entities.DefaultGuardAttr, ev.Updated)
	_, err := u.store.Apply(ctx, entities.EntityKey(id.workOrderKey, "approval"), plan)
	return err
}

// materialChange reports whether the approved-damage set differs between the
// two images. No old image always counts as a change.
func materialChange(newImage, oldImage map[string]any) bool {
	if len(oldImage) == 0 {
		return true
	}
	extract := func(img map[string]any) map[string]bool {
		out := map[string]bool{}
		for _, raw := range normalize.ListValue(normalize.MapValue(img, "order"), "condition", "damages") {
			d, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			k := normalize.ToString(d["itemCode"]) + "#" + normalize.ToString(d["subItemCode"]) + "#" + normalize.ToString(d["damageCode"])
			approved, _ := d["approved"].(bool)
			out[k] = approved
		}
		return out
	}
	newSet, oldSet := extract(newImage), extract(oldImage)
	if len(newSet) != len(oldSet) {
		return true
	}
	for k, v := range newSet {
		if ov, ok := oldSet[k]; !ok || ov != v {
			return true
		}
	}
	return false
}

// damageKeyPair carries the full ISDSA key alongside the legacy IDSA variant
// (no sub-item code) so reconciliation can match records written before
// sub-items were part of the key.
type damageKeyPair struct {
	isdsa string
	idsa  string
}

func damageKeys(d map[string]any) damageKeyPair {
	return damageKeyPair{
		isdsa: entities.DamageSK(
			normalize.ToString(d["itemCode"]),
			normalize.ToString(d["subItemCode"]),
			normalize.ToString(d["damageCode"]),
			normalize.ToString(d["severityCode"]),
			normalize.ToString(d["actionCode"]),
		),
		idsa: entities.DamageSKShort(
			normalize.ToString(d["itemCode"]),
			normalize.ToString(d["damageCode"]),
			normalize.ToString(d["severityCode"]),
			normalize.ToString(d["actionCode"]),
		),
	}
}

// reconcileDamages three-way-diffs the damage collections embedded in the new
// and old event images: created = new-old, updated = new∩old,
// deleted = old-new. Deletes also flip the approved flag on any linked repair
// labor-status record so downstream consumers reconcile.
func (u *ProcessEventUseCase) reconcileDamages(ctx context.Context, ev entities.Event, id identity, updatedBy string) error {
	pk := entities.WorkOrderPK(id.workOrderKey)

	byKey := map[string]map[string]any{}
	newSet := map[damageKeyPair]bool{}
	for _, raw := range normalize.ListValue(normalize.MapValue(ev.New, "order"), "condition", "damages") {
		if d, ok := raw.(map[string]any); ok {
			pair := damageKeys(d)
			newSet[pair] = true
			byKey[pair.isdsa] = d
		}
	}
	oldSet := map[damageKeyPair]bool{}
	for _, raw := range normalize.ListValue(normalize.MapValue(ev.Old, "order"), "condition", "damages") {
		if d, ok := raw.(map[string]any); ok {
			oldSet[damageKeys(d)] = true
		}
	}

	currentRows, err := u.store.QueryPrefix(ctx, pk, entities.DamageSKPrefix)
	if err != nil {
		return fmt.Errorf("query current damages: %w", err)
	}
	current := make(map[string]map[string]any, len(currentRows))
	for _, row := range currentRows {
		current[normalize.ToString(row["sk"])] = row
	}

	var failures []error

	// deleted
	for pair := range oldSet {
		if newSet[pair] {
			continue
		}
		row, sk := resolveCurrentDamage(current, pair)
		if row == nil {
			continue
		}
		if entities.SubItemFromDamageSK(pair.isdsa) != normalize.ToString(row["sub_item_code"]) {
			continue
		}
		u.log.Debug("deleting damage", zap.String("pk", pk), zap.String("sk", sk))
		if err := u.store.Delete(ctx, entities.Key{PK: pk, SK: sk}); err != nil {
			failures = append(failures, fmt.Errorf("delete damage %s: %w", sk, err))
			continue
		}
		delete(current, sk)
		row["approved"] = false
		u.flipLaborStatusApproval(ctx, id.workOrderKey, row, updatedBy)
	}

	// updated
	for pair := range newSet {
		if !oldSet[pair] {
			continue
		}
		targetSK := pair.isdsa
		if row, sk := resolveCurrentDamage(current, pair); row != nil &&
			entities.SubItemFromDamageSK(pair.isdsa) == normalize.ToString(row["sub_item_code"]) {
			targetSK = sk
			delete(current, sk)
		}
		if err := u.storeDamageRecord(ctx, ev, id, targetSK, byKey[pair.isdsa], updatedBy); err != nil {
			failures = append(failures, fmt.Errorf("update damage %s: %w", targetSK, err))
		}
	}

	// created
	for pair := range newSet {
		if oldSet[pair] {
			continue
		}
		if err := u.storeDamageRecord(ctx, ev, id, pair.isdsa, byKey[pair.isdsa], updatedBy); err != nil {
			failures = append(failures, fmt.Errorf("create damage %s: %w", pair.isdsa, err))
		}
	}

	if len(current) > 0 {
		skList := make([]string, 0, len(current))
		for sk := range current {
			skList = append(skList, sk)
		}
		u.log.Warn("stored damages neither updated nor deleted",
			zap.String("pk", pk), zap.Strings("sks", skList))
	}

	return joinFailures(failures)
}

// resolveCurrentDamage looks the pair up by the full key first, then falls
// back to the short legacy key. The caller still has to verify the sub-item
// code before trusting a short-key match.
func resolveCurrentDamage(current map[string]map[string]any, pair damageKeyPair) (map[string]any, string) {
	if row, ok := current[pair.isdsa]; ok {
		return row, pair.isdsa
	}
	if row, ok := current[pair.idsa]; ok {
		return row, pair.idsa
	}
	return nil, ""
}

// storeDamageRecord writes one damage child record: snakecased damage fields
// plus the labor explosion and the overall repair rollup, then mirrors the
// approved flag onto the linked labor-status record.
func (u *ProcessEventUseCase) storeDamageRecord(ctx context.Context, ev entities.Event, id identity, sk string, damage map[string]any, updatedBy string) error {
	if damage == nil {
		return fmt.Errorf("damage payload missing for %s: %w", sk, entities.ErrValidation)
	}
	record := id.baseRecord("damage")
	for k, v := range normalize.Fields(damage, nil) {
		record[k] = v
	}

	for _, labor := range buildLabors(record) {
		u.mergeLaborStatus(ctx, id.workOrderKey, labor, record)
	}
	record["repaired"] = overallDamageStatus(record)

	plan := entities.BuildWritePlan(record, nil, "", entities.DefaultGuardAttr, ev.Updated)
	if _, err := u.store.Apply(ctx, entities.Key{PK: entities.WorkOrderPK(id.workOrderKey), SK: sk}, plan); err != nil {
		return err
	}

	u.flipLaborStatusApproval(ctx, id.workOrderKey, record, updatedBy)
	return nil
}

// flipLaborStatusApproval mirrors the damage's approved flag onto the repair
// labor-status record for the same ISDSA, when one exists. Failures here are
// logged, never propagated: the damage write already landed.
func (u *ProcessEventUseCase) flipLaborStatusApproval(ctx context.Context, workOrderKey string, damage map[string]any, updatedBy string) {
	key := entities.RepairLaborStatusKey(workOrderKey, damageISDSA(damage))

	existing, err := u.store.Get(ctx, key)
	if err != nil {
		u.log.Error("labor status read failed", zap.String("sk", key.SK), zap.Error(err))
		return
	}
	if existing == nil {
		return
	}

	approved, _ := damage["approved"].(bool)
	status := map[string]any{
		"approved":   approved,
		"updated_by": updatedBy,
		"user_id":    updatedBy,
	}
	plan := entities.BuildWritePlan(status, nil, "", entities.DefaultGuardAttr, normalize.EpochNow(u.now()))
	if _, err := u.store.Apply(ctx, key, plan); err != nil {
		u.log.Error("labor status approval flip failed", zap.String("sk", key.SK), zap.Error(err))
	}
}

// storeTireRecord writes a tire child record on first sight only: tire data
// is immutable per location once captured, so an existing record wins.
func (u *ProcessEventUseCase) storeTireRecord(ctx context.Context, ev entities.Event, id identity, tire map[string]any) error {
	location := normalize.ToString(tire["location"])
	if location == "" {
		return fmt.Errorf("tire without location: %w", entities.ErrValidation)
	}
	key := entities.TireKey(id.workOrderKey, normalize.SnakeCase(location))

	existing, err := u.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if existing != nil {
		u.log.Debug("tire record already present", zap.String("sk", key.SK))
		return nil
	}

	record := id.baseRecord("tire")
	record["source"] = "ECR"
	record["is_estimate_assistant"] = "N"
	for k, v := range normalize.Fields(tire, nil) {
		record[k] = v
	}

	plan := entities.BuildWritePlan(record, nil, "", entities.DefaultGuardAttr, ev.Updated)
	_, err = u.store.Apply(ctx, key, plan)
	return err
}

func joinFailures(failures []error) error {
	return errors.Join(failures...)
}

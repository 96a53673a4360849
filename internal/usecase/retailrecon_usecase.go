package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/MayureshM/rpp-workorder/internal/domain/entities"
	"github.com/MayureshM/rpp-workorder/internal/domain/normalize"
)

const missingTaskDate = "0000-00-00T00:00:00Z"

// handleRetailRecon fans a retail-recon lifecycle event out into the entity
// record, one record per completed and active task, a rejected flag on the
// summary when the order was rejected, and whatever summary snapshots the
// task transitions call for.
func (u *ProcessEventUseCase) handleRetailRecon(ctx context.Context, ev entities.Event) error {
	id, err := u.resolveIdentity(ctx, ev.New)
	if err != nil {
		return err
	}
	pk := entities.WorkOrderPK(id.workOrderKey)
	order := normalize.MapValue(ev.New, "order")
	completedTasks := taskMaps(normalize.ListValue(ev.New, "order", "completedTasks"))
	activeTasks := taskMaps(normalize.ListValue(ev.New, "order", "activeTasks"))

	var failures []error

	record := id.baseRecord("retail_recon")
	for k, v := range normalize.Fields(order, nil) {
		record[k] = v
	}
	delete(record, "completed_tasks")
	delete(record, "active_tasks")
	record["key_src"] = keySource(ev)
	plan := entities.BuildWritePlan(record, nil, "", entities.DefaultGuardAttr, ev.Updated)
	if _, err := u.store.Apply(ctx, entities.EntityKey(id.workOrderKey, "retail_recon"), plan); err != nil {
		failures = append(failures, fmt.Errorf("retail recon record: %w", err))
	}

	if rejected, _ := record["rejected"].(bool); rejected {
		flag := entities.BuildWritePlan(map[string]any{"rejected": true}, nil, "", entities.DefaultGuardAttr, ev.Updated)
		if _, err := u.store.Apply(ctx, entities.SummaryKey(id.workOrderKey), flag); err != nil {
			failures = append(failures, fmt.Errorf("summary rejected flag: %w", err))
		}
	}

	// task rows keep the upstream field names; their sort keys carry the
	// canonicalized task name plus the task's own timestamp
	for _, task := range completedTasks {
		completedOn := normalize.ToString(task["completedOn"])
		if completedOn == "" {
			continue
		}
		row := id.baseRecord("retail_recon")
		for k, v := range task {
			row[k] = v
		}
		sk := "completed_task:" + taskSKName(normalize.ToString(task["taskName"])) + "#" + completedOn
		taskPlan := entities.BuildWritePlan(row, nil, "", entities.DefaultGuardAttr, ev.Updated)
		if _, err := u.store.Apply(ctx, entities.Key{PK: pk, SK: sk}, taskPlan); err != nil {
			failures = append(failures, fmt.Errorf("completed task %s: %w", sk, err))
		}
	}
	for _, task := range activeTasks {
		createdOn := normalize.ToString(task["createdOn"])
		if createdOn == "" {
			createdOn = missingTaskDate
		}
		row := id.baseRecord("retail_recon")
		for k, v := range task {
			row[k] = v
		}
		sk := "active_task:" + taskSKName(normalize.ToString(task["type"])) + "#" + createdOn
		if strings.HasPrefix(sk, "active_task:vehicle_qualification") {
			if cid, ok := row["customerId"]; ok {
				delete(row, "customerId")
				row["customer_id"] = normalize.ToString(cid)
			}
		}
		taskPlan := entities.BuildWritePlan(row, nil, "", entities.DefaultGuardAttr, ev.Updated)
		if _, err := u.store.Apply(ctx, entities.Key{PK: pk, SK: sk}, taskPlan); err != nil {
			failures = append(failures, fmt.Errorf("active task %s: %w", sk, err))
		}
	}

	if err := u.runSummaryTriggers(ctx, ev, id, pk, order, activeTasks, completedTasks); err != nil {
		failures = append(failures, err)
	}

	return joinFailures(failures)
}

// runSummaryTriggers inspects the task transitions and writes the summary
// snapshots they call for:
//   - Approve active + Estimate completed: the estimate is final, snapshot it.
//   - Pending Rejection completed: snapshot the estimate at rejection time,
//     and when the order had already been through Repair and Approve, rebuild
//     the approval summary too.
//   - Repair active + Approve completed: the order entered repair; write an
//     initial approval summary if a labor-bearing one never got written.
func (u *ProcessEventUseCase) runSummaryTriggers(ctx context.Context, ev entities.Event, id identity, pk string, order map[string]any, activeTasks, completedTasks []map[string]any) error {
	var failures []error

	if hasTaskType(activeTasks, "Approve") {
		if estimateOn, _, ok := latestCompleted(completedTasks, "Estimate"); ok {
			if err := u.writeEstimateSummary(ctx, id, pk, estimateOn, ev.Updated); err != nil {
				failures = append(failures, fmt.Errorf("estimate summary: %w", err))
			}
		}
	}

	if rejectedOn, rejectedBy, ok := latestCompleted(completedTasks, "Pending Rejection"); ok {
		if err := u.writeEstimateSummary(ctx, id, pk, rejectedOn, ev.Updated); err != nil {
			failures = append(failures, fmt.Errorf("rejection estimate summary: %w", err))
		}
		_, _, approveDone := latestCompleted(completedTasks, "Approve")
		_, _, repairDone := latestCompleted(completedTasks, "Repair")
		if approveDone && repairDone {
			updatedBy := normalize.ToString(order["updatedBy"])
			if updatedBy == "" {
				updatedBy = rejectedBy
			}
			if err := u.resummarizeAfterRejection(ctx, id, pk, rejectedOn, updatedBy, ev.Updated); err != nil {
				failures = append(failures, fmt.Errorf("post-rejection approval summary: %w", err))
			}
		}
	}

	if hasTaskType(activeTasks, "Repair") {
		if approveOn, approvedBy, ok := latestCompleted(completedTasks, "Approve"); ok {
			updatedBy := normalize.ToString(order["updatedBy"])
			if updatedBy == "" {
				updatedBy = approvedBy
			}
			if err := u.writeInitialApprovalSummary(ctx, id, pk, approveOn, updatedBy, ev.Updated); err != nil {
				failures = append(failures, fmt.Errorf("initial approval summary: %w", err))
			}
		}
	}

	return joinFailures(failures)
}

// resummarizeAfterRejection rebuilds the approval summary at rejection time.
// Only orders that already have an approval summary qualify.
func (u *ProcessEventUseCase) resummarizeAfterRejection(ctx context.Context, id identity, pk, rejectedOn, updatedBy, guard string) error {
	latest, err := u.latestApproveSummary(ctx, pk)
	if err != nil {
		return err
	}
	if latest == nil {
		return nil
	}
	return u.writeApprovalSummary(ctx, id, pk, rejectedOn, updatedBy, guard)
}

// writeInitialApprovalSummary covers orders approved with zero labor: the
// approval handler never wrote a summary for them, so the repair transition
// writes one. The snapshot key uses the current wall clock while the recorded
// completion timestamp stays the approval's.
func (u *ProcessEventUseCase) writeInitialApprovalSummary(ctx context.Context, id identity, pk, approvedOn, updatedBy, guard string) error {
	latest, err := u.latestApproveSummary(ctx, pk)
	if err != nil {
		return err
	}
	if latest != nil {
		return nil
	}
	totals, err := u.stabilizedTotals(ctx, pk, true)
	if err != nil {
		return err
	}
	if totals.labor != 0 {
		return nil
	}

	record := id.baseRecord("approve_summary")
	record["reconFee"] = summaryAmount(totals.reconFee)
	record["labor"] = summaryAmount(totals.labor)
	record["parts"] = summaryAmount(totals.parts)
	record["completeTimestamp"] = approvedOn
	record["approverUserName"] = updatedBy

	plan := entities.BuildWritePlan(record, nil, "", entities.DefaultGuardAttr, guard)
	snapshotOn := u.now().UTC().Format("2006-01-02T15:04:05Z")
	_, err = u.store.Apply(ctx, entities.ApproveSummaryKey(id.workOrderKey, snapshotOn), plan)
	return err
}

// handleRetailReconRemove tears down the projections owned by the retail
// recon stream: the entity record, every task row, and the estimate snapshot
// for the removed order's final estimate. Rows already gone are fine.
func (u *ProcessEventUseCase) handleRetailReconRemove(ctx context.Context, ev entities.Event) error {
	id, err := u.resolveIdentity(ctx, ev.Old)
	if err != nil {
		return err
	}
	pk := entities.WorkOrderPK(id.workOrderKey)

	var failures []error

	for _, prefix := range []string{"active_task:", "completed_task:"} {
		rows, err := u.store.QueryPrefix(ctx, pk, prefix)
		if err != nil {
			failures = append(failures, fmt.Errorf("query %s rows: %w", prefix, err))
			continue
		}
		for _, row := range rows {
			sk := normalize.ToString(row["sk"])
			if err := u.store.Delete(ctx, entities.Key{PK: pk, SK: sk}); err != nil && !errors.Is(err, entities.ErrNotFound) {
				failures = append(failures, fmt.Errorf("delete %s: %w", sk, err))
			}
		}
	}

	if err := u.store.Delete(ctx, entities.EntityKey(id.workOrderKey, "retail_recon")); err != nil && !errors.Is(err, entities.ErrNotFound) {
		failures = append(failures, fmt.Errorf("delete retail recon record: %w", err))
	}

	completedTasks := taskMaps(normalize.ListValue(ev.Old, "order", "completedTasks"))
	activeTasks := taskMaps(normalize.ListValue(ev.Old, "order", "activeTasks"))
	if hasTaskType(activeTasks, "Approve") {
		if estimateOn, _, ok := latestCompleted(completedTasks, "Estimate"); ok {
			key := entities.EstimateSummaryKey(id.workOrderKey, estimateOn)
			if err := u.store.Delete(ctx, key); err != nil && !errors.Is(err, entities.ErrNotFound) {
				failures = append(failures, fmt.Errorf("delete %s: %w", key.SK, err))
			}
		}
	}

	u.log.Info("retail recon projections removed", zap.String("pk", pk))
	return joinFailures(failures)
}

func taskMaps(raw []any) []map[string]any {
	tasks := make([]map[string]any, 0, len(raw))
	for _, t := range raw {
		if m, ok := t.(map[string]any); ok {
			tasks = append(tasks, m)
		}
	}
	return tasks
}

func hasTaskType(tasks []map[string]any, taskType string) bool {
	for _, t := range tasks {
		if normalize.ToString(t["type"]) == taskType {
			return true
		}
	}
	return false
}

// latestCompleted returns the newest completion timestamp among tasks with
// the given name, plus the user who completed that one. ok is false when no
// such task has a completion timestamp.
func latestCompleted(tasks []map[string]any, taskName string) (completedOn, modUser string, ok bool) {
	for _, t := range tasks {
		if normalize.ToString(t["taskName"]) != taskName {
			continue
		}
		on := normalize.ToString(t["completedOn"])
		if on == "" || on <= completedOn {
			continue
		}
		completedOn, modUser, ok = on, normalize.ToString(t["modUser"]), true
	}
	return completedOn, modUser, ok
}

func taskSKName(name string) string {
	return normalize.SnakeCase(strings.ReplaceAll(name, " ", ""))
}

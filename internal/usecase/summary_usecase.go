package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/MayureshM/rpp-workorder/internal/domain/entities"
	"github.com/MayureshM/rpp-workorder/internal/domain/normalize"
)

const (
	defaultStabilizeAttempts = 5
	defaultStabilizeWait     = time.Second
)

var summaryCategoryPrefixes = []string{
	entities.FeeSKPrefix,
	entities.LaborSKPrefix,
	entities.PartSKPrefix,
}

// summaryTotals carries the three category sums plus the row count they were
// computed over. The count participates in stabilization: two reads with
// equal sums but different row counts have not settled yet.
type summaryTotals struct {
	reconFee float64
	labor    float64
	parts    float64
	rows     int
}

func (t summaryTotals) equal(o summaryTotals) bool {
	return t.reconFee == o.reconFee && t.labor == o.labor && t.parts == o.parts && t.rows == o.rows
}

// calculateTotals sums the fee, labor and part children of one work order.
// Rows flagged hidden or skipped never count; approvedOnly additionally
// restricts to rows flagged approved, which is the approval-summary variant.
// Blank and non-numeric amounts count as zero.
func (u *ProcessEventUseCase) calculateTotals(ctx context.Context, pk string, approvedOnly bool) (summaryTotals, error) {
	var totals summaryTotals
	for _, prefix := range summaryCategoryPrefixes {
		rows, err := u.store.QueryPrefix(ctx, pk, prefix)
		if err != nil {
			return summaryTotals{}, fmt.Errorf("query %s children: %w", prefix, err)
		}
		for _, row := range rows {
			if normalize.ToString(row["hidden"]) == "Y" || normalize.ToString(row["skipped"]) == "Y" {
				continue
			}
			if approvedOnly && normalize.ToString(row["approved"]) != "Y" {
				continue
			}
			totals.rows++
			switch prefix {
			case entities.FeeSKPrefix:
				totals.reconFee += normalize.ToFloat(row["total_estimate"])
			case entities.LaborSKPrefix:
				totals.labor += normalize.ToFloat(row["extended_price"])
			case entities.PartSKPrefix:
				totals.parts += normalize.ToFloat(row["extended_price"])
			}
		}
	}
	return totals, nil
}

// stabilizedTotals re-reads the category children until two consecutive reads
// agree, bounded by a fixed attempt budget. Sibling writes from the same
// logical transaction land independently, so a summary computed from a single
// read can observe a half-applied fan-out; agreement across two reads is the
// settle signal. On budget exhaustion the last read wins.
func (u *ProcessEventUseCase) stabilizedTotals(ctx context.Context, pk string, approvedOnly bool) (summaryTotals, error) {
	attempts := u.stabilizeAttempts
	if attempts <= 0 {
		attempts = defaultStabilizeAttempts
	}
	wait := u.stabilizeWait
	if wait <= 0 {
		wait = defaultStabilizeWait
	}

	prev, err := u.calculateTotals(ctx, pk, approvedOnly)
	if err != nil {
		return summaryTotals{}, err
	}
	for attempt := 1; attempt < attempts; attempt++ {
		select {
		case <-ctx.Done():
			return summaryTotals{}, ctx.Err()
		case <-time.After(wait):
		}
		cur, err := u.calculateTotals(ctx, pk, approvedOnly)
		if err != nil {
			return summaryTotals{}, err
		}
		if cur.equal(prev) {
			return cur, nil
		}
		u.log.Debug("summary totals still settling",
			zap.String("pk", pk), zap.Int("attempt", attempt))
		prev = cur
	}
	u.log.Warn("summary totals did not stabilize, using last read", zap.String("pk", pk))
	return prev, nil
}

// writeApprovalSummary appends an approve_summary snapshot keyed by the
// approval completion timestamp. Snapshots are append-only; a re-approval
// with a new completion timestamp creates a new row instead of overwriting.
func (u *ProcessEventUseCase) writeApprovalSummary(ctx context.Context, id identity, pk, completedOn, updatedBy, guard string) error {
	totals, err := u.stabilizedTotals(ctx, pk, true)
	if err != nil {
		return err
	}
	record := id.baseRecord("approve_summary")
	record["reconFee"] = summaryAmount(totals.reconFee)
	record["labor"] = summaryAmount(totals.labor)
	record["parts"] = summaryAmount(totals.parts)
	record["completeTimestamp"] = completedOn
	record["approverUserName"] = updatedBy

	plan := entities.BuildWritePlan(record, nil, "", entities.DefaultGuardAttr, guard)
	key := entities.ApproveSummaryKey(id.workOrderKey, completedOn)
	u.log.Debug("writing approval summary", zap.String("pk", key.PK), zap.String("sk", key.SK))
	_, err = u.store.Apply(ctx, key, plan)
	return err
}

// writeEstimateSummary appends an estimate_summary snapshot. Unlike the
// approval variant it sums all visible children regardless of approval,
// since at estimate time nothing has been approved yet.
func (u *ProcessEventUseCase) writeEstimateSummary(ctx context.Context, id identity, pk, completedOn, guard string) error {
	totals, err := u.stabilizedTotals(ctx, pk, false)
	if err != nil {
		return err
	}
	record := id.baseRecord("estimate_summary")
	record["reconFee"] = summaryAmount(totals.reconFee)
	record["labor"] = summaryAmount(totals.labor)
	record["parts"] = summaryAmount(totals.parts)
	record["completeTimestamp"] = completedOn

	plan := entities.BuildWritePlan(record, nil, "", entities.DefaultGuardAttr, guard)
	key := entities.EstimateSummaryKey(id.workOrderKey, completedOn)
	u.log.Debug("writing estimate summary", zap.String("pk", key.PK), zap.String("sk", key.SK))
	_, err = u.store.Apply(ctx, key, plan)
	return err
}

// latestApproveSummary returns the most recent approve_summary snapshot for
// the work order, or nil when none exists.
func (u *ProcessEventUseCase) latestApproveSummary(ctx context.Context, pk string) (map[string]any, error) {
	rows, err := u.store.QueryPrefix(ctx, pk, entities.ApproveSummarySKPrefix)
	if err != nil {
		return nil, err
	}
	var latest map[string]any
	latestSK := ""
	for _, row := range rows {
		if sk := normalize.ToString(row["sk"]); sk > latestSK {
			latest, latestSK = row, sk
		}
	}
	return latest, nil
}

// summaryAmount renders a sum without float artifacts: whole amounts print
// as integers, fractional ones keep at most two decimal places.
func summaryAmount(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

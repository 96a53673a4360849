package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/MayureshM/rpp-workorder/internal/domain/entities"
	"github.com/MayureshM/rpp-workorder/internal/domain/normalize"
)

// laborTypes in canonical explosion order.
var laborTypes = []string{"repair", "paint", "part"}

// buildLabors explodes a damage record into its labor rows: one per labor
// type with non-zero cost or hours, defaulting to a single repair row when
// none qualify. Zero-hour labors get hours derived from cost at the standard
// shop rate; the derived value is written back onto the damage record.
func buildLabors(record map[string]any) []map[string]any {
	var labors []map[string]any
	for _, lt := range laborTypes {
		if normalize.ToFloat(record[lt+"_labor_hours"]) != 0 || normalize.ToFloat(record[lt+"_labor_cost"]) != 0 {
			labors = append(labors, buildLabor(record, lt))
		}
	}
	if len(labors) == 0 {
		labors = append(labors, buildLabor(record, "repair"))
	}
	return labors
}

const shopHourRate = 50

func buildLabor(record map[string]any, laborType string) map[string]any {
	labor := map[string]any{
		"damage_labor_type": laborType,
		"labor_cost":        record[laborType+"_labor_cost"],
		"labor_hours":       record[laborType+"_labor_hours"],
	}

	item := normalize.ToString(record["item"])
	if laborType == "paint" {
		labor["name"] = "Paint " + item
	} else {
		labor["name"] = normalize.ToString(record["action"]) + " " + item
	}

	if normalize.ToFloat(labor["labor_hours"]) == 0 {
		hours := normalize.ToFloat(record[laborType+"_labor_cost"]) / shopHourRate
		derived := json.Number(strconv.FormatFloat(hours, 'f', -1, 64))
		labor["labor_hours"] = derived
		record[laborType+"_labor_hours"] = derived
	}
	return labor
}

// mergeLaborStatus folds the repair-tracker status for one labor row into the
// damage record. Missing status means the work has not started: the labor is
// marked ready for repair. Charge statuses are set-or-removed so a status
// cleared upstream disappears from the stored record too.
func (u *ProcessEventUseCase) mergeLaborStatus(ctx context.Context, workOrderKey string, labor, record map[string]any) {
	laborType := normalize.ToString(labor["damage_labor_type"])
	isdt := entities.LaborStatusSK(
		normalize.ToString(record["item_code"]),
		normalize.ToString(record["sub_item_code"]),
		normalize.ToString(record["damage_code"]),
		laborType,
	)

	status, ok, err := u.laborStatus.Find(ctx, workOrderKey, isdt)
	if err != nil {
		u.log.Warn("labor status lookup failed",
			zap.String("work_order_key", workOrderKey), zap.String("isdt", isdt), zap.Error(err))
		return
	}
	if !ok {
		record[laborType+"_status"] = "READY FOR REPAIR"
		record["source"] = "approval event"
		record["is_estimate_assistant"] = "N"
		return
	}

	if current := normalize.MapValue(status, "current_status"); len(current) > 0 {
		record[laborType+"_status"] = normalize.ToString(current["labor_status"])
		record["updated_date"] = normalize.ToString(current["date"])
		record["source"] = normalize.ToString(current["source"])
		record["is_estimate_assistant"] = "N"
		if by := normalize.ToString(current["updated_by"]); by != "" {
			record["updated_by"] = by
		}
	}

	for _, charge := range []string{"charge_l_status", "charge_p_status"} {
		if v := normalize.ToString(status[charge]); v != "" {
			record[charge] = v
		} else {
			record[charge] = entities.RemoveSentinel
		}
	}
}

// overallDamageStatus rolls the per-labor statuses up to a single
// repaired=Y/N flag: Y only when every labor type with cost or hours is
// COMPLETED.
func overallDamageStatus(record map[string]any) string {
	for _, lt := range laborTypes {
		status := normalize.ToString(record[lt+"_status"])
		if status == "" {
			continue
		}
		hasWork := normalize.ToFloat(record[lt+"_labor_cost"]) != 0 || normalize.ToFloat(record[lt+"_labor_hours"]) != 0
		if status != "COMPLETED" && hasWork {
			return "N"
		}
	}
	return "Y"
}

// damageISDSA joins the five discriminator codes of an already-normalized
// damage record.
func damageISDSA(record map[string]any) string {
	return fmt.Sprintf("%s#%s#%s#%s#%s",
		normalize.ToString(record["item_code"]),
		normalize.ToString(record["sub_item_code"]),
		normalize.ToString(record["damage_code"]),
		normalize.ToString(record["severity_code"]),
		normalize.ToString(record["action_code"]),
	)
}

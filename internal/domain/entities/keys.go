package entities

import (
	"fmt"
	"strings"
)

// Key is the composite identity of a sub-record in the aggregate table.
//
// Storage model (DynamoDB):
//   - PK: pk (string), always "workorder:" + <sblu>#<site_id>
//   - SK: sk (string), sub-record discriminator
//
// The summary record uses sk == pk. Damage and labor sort keys are upper-cased;
// producers and consumers must agree on casing exactly or lookups miss.
type Key struct {
	PK string
	SK string
}

const workOrderPrefix = "workorder:"

// Sort-key prefixes for the repeatable sub-record families.
const (
	DamageSKPrefix            = "damage:"
	TireSKPrefix              = "tire:"
	FeeSKPrefix               = "fee#"
	LaborSKPrefix             = "labor#"
	PartSKPrefix              = "part#"
	RepairLaborStatusSKPrefix = "repair_labor_status:"
	ApproveSummarySKPrefix    = "approve_summary#"
	EstimateSummarySKPrefix   = "estimate_summary#"
)

// ComposeWorkOrderKey builds the work-order identifier from the unit short
// code and the site code. Both parts are required; surrounding whitespace
// never reaches the key.
func ComposeWorkOrderKey(sblu, siteID string) (string, error) {
	sblu = strings.TrimSpace(sblu)
	siteID = strings.TrimSpace(siteID)
	if sblu == "" || siteID == "" {
		return "", fmt.Errorf("compose work order key: sblu=%q site_id=%q: %w", sblu, siteID, ErrValidation)
	}
	return sblu + "#" + siteID, nil
}

// WorkOrderPK prefixes a work-order identifier for use as a partition key.
func WorkOrderPK(workOrderKey string) string {
	return workOrderPrefix + workOrderKey
}

// WorkOrderKeyFromPK strips the partition-key prefix back off.
func WorkOrderKeyFromPK(pk string) string {
	return strings.TrimPrefix(pk, workOrderPrefix)
}

// SummaryKey is the one-per-work-order summary row (sk == pk).
func SummaryKey(workOrderKey string) Key {
	pk := WorkOrderPK(workOrderKey)
	return Key{PK: pk, SK: pk}
}

// EntityKey addresses a singleton entity record (approval, offering, ...).
func EntityKey(workOrderKey, entityType string) Key {
	return Key{PK: WorkOrderPK(workOrderKey), SK: entityType}
}

// DamageSK builds the ISDSA damage sort key: item, sub-item, damage, severity
// and action codes joined with '#', upper-cased.
func DamageSK(itemCode, subItemCode, damageCode, severityCode, actionCode string) string {
	parts := []string{itemCode, subItemCode, damageCode, severityCode, actionCode}
	return DamageSKPrefix + strings.ToUpper(strings.Join(parts, "#"))
}

// DamageSKShort is the IDSA variant without the sub-item code, used as a
// fallback when legacy records were written before sub-items existed.
func DamageSKShort(itemCode, damageCode, severityCode, actionCode string) string {
	parts := []string{itemCode, damageCode, severityCode, actionCode}
	return DamageSKPrefix + strings.ToUpper(strings.Join(parts, "#"))
}

// SubItemFromDamageSK extracts the sub-item code from an ISDSA sort key.
func SubItemFromDamageSK(sk string) string {
	parts := strings.Split(strings.TrimPrefix(sk, DamageSKPrefix), "#")
	if len(parts) < 5 {
		return ""
	}
	return parts[1]
}

// LaborStatusSK builds the ISDT labor-status sort key: item, sub-item, damage
// codes plus the labor type, upper-cased.
func LaborStatusSK(itemCode, subItemCode, damageCode, laborType string) string {
	return strings.ToUpper(itemCode + "#" + subItemCode + "#" + damageCode + "#" + laborType)
}

// RepairLaborStatusKey addresses the repair labor-status record linked to a
// damage, keyed by the damage's ISDSA string (without the damage: prefix).
func RepairLaborStatusKey(workOrderKey, isdsa string) Key {
	return Key{PK: WorkOrderPK(workOrderKey), SK: RepairLaborStatusSKPrefix + isdsa}
}

// TireKey addresses the tire record for a wheel location.
func TireKey(workOrderKey, location string) Key {
	return Key{PK: WorkOrderPK(workOrderKey), SK: TireSKPrefix + strings.ToLower(location)}
}

// WorkCreditKey addresses a work-credit record; category is "damage" or "fee".
func WorkCreditKey(workOrderKey, category, labor string) Key {
	return Key{PK: WorkOrderPK(workOrderKey), SK: "workcredit:" + category + "#" + labor}
}

// ApproveSummaryKey addresses a timestamp-suffixed approval snapshot. These
// are append-only: each approval transition writes a new snapshot row.
func ApproveSummaryKey(workOrderKey, completedOn string) Key {
	return Key{PK: WorkOrderPK(workOrderKey), SK: ApproveSummarySKPrefix + completedOn}
}

// EstimateSummaryKey addresses a timestamp-suffixed estimate snapshot.
func EstimateSummaryKey(workOrderKey, completedOn string) Key {
	return Key{PK: WorkOrderPK(workOrderKey), SK: EstimateSummarySKPrefix + completedOn}
}

package response

import (
	"github.com/MayureshM/rpp-workorder/internal/domain/entities"
	"github.com/MayureshM/rpp-workorder/internal/domain/normalize"
)

type WorkOrderResponse struct {
	WorkOrderKey    string         `json:"work_order_key"`
	EntityType      string         `json:"entity_type,omitempty"`
	SBLU            string         `json:"sblu,omitempty"`
	SiteID          string         `json:"site_id,omitempty"`
	VIN             string         `json:"vin,omitempty"`
	WorkOrderNumber string         `json:"work_order_number,omitempty"`
	Attributes      map[string]any `json:"attributes,omitempty"`
}

// FromRecord lifts the identity fields out of a stored record and keeps the
// remaining attributes as-is.
func FromRecord(record map[string]any) WorkOrderResponse {
	resp := WorkOrderResponse{
		WorkOrderKey:    entities.WorkOrderKeyFromPK(normalize.ToString(record["pk"])),
		EntityType:      normalize.ToString(record["entity_type"]),
		SBLU:            normalize.ToString(record["sblu"]),
		SiteID:          normalize.ToString(record["site_id"]),
		VIN:             normalize.ToString(record["vin"]),
		WorkOrderNumber: normalize.ToString(record["work_order_number"]),
	}

	attrs := make(map[string]any, len(record))
	for k, v := range record {
		switch k {
		case "pk", "entity_type", "sblu", "site_id", "vin", "work_order_number":
			continue
		}
		attrs[k] = v
	}
	if len(attrs) > 0 {
		resp.Attributes = attrs
	}
	return resp
}

func FromRecords(records []map[string]any) []WorkOrderResponse {
	out := make([]WorkOrderResponse, 0, len(records))
	for _, record := range records {
		out = append(out, FromRecord(record))
	}
	return out
}

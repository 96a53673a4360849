package request

import "strings"

// WorkOrderQuery carries the lookup parameters for the work order read
// endpoints. Either work_order_key or work_order_number plus site_id must be
// present.
type WorkOrderQuery struct {
	WorkOrderKey    string `form:"work_order_key"`
	WorkOrderNumber string `form:"work_order_number"`
	SiteID          string `form:"site_id"`
}

func (q WorkOrderQuery) ResolveKey() string {
	return strings.TrimSpace(q.WorkOrderKey)
}

func (q WorkOrderQuery) ResolveNumber() (string, string) {
	return strings.TrimSpace(q.WorkOrderNumber), strings.TrimSpace(q.SiteID)
}

package interfaces

import "context"

// VehicleInfo is the slice of reference data the handlers backfill from when
// an event arrives without its composite identifiers.
type VehicleInfo struct {
	VIN             string
	WorkOrderNumber string
}

// VehicleLookup is the read-only reference-data collaborator. Find returns
// ok=false when no vehicle exists for the work order; that is never fatal,
// the caller leaves the fields blank.

type VehicleLookup interface {
	Find(ctx context.Context, workOrderKey string) (VehicleInfo, bool, error)
}

package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/MayureshM/rpp-workorder/internal/domain/entities"
	"github.com/MayureshM/rpp-workorder/internal/domain/normalize"
	"github.com/MayureshM/rpp-workorder/internal/usecase/interfaces"
)

// ProcessEventUseCase turns decoded change events into conditional writes
// against the aggregate table. One instance is built per process and shared
// across invocations; it holds no per-event state, so concurrent events for
// the same work order are safe. Correctness rests entirely on the store's
// timestamp guard, not on anything in here.
type ProcessEventUseCase struct {
	store       interfaces.WorkOrderStore
	vehicles    interfaces.VehicleLookup
	laborStatus interfaces.LaborStatusLookup
	log         *zap.Logger
	now         func() time.Time

	// stabilization knobs for derived-summary recomputes; zero means default
	stabilizeAttempts int
	stabilizeWait     time.Duration
}

func NewProcessEventUseCase(store interfaces.WorkOrderStore, vehicles interfaces.VehicleLookup, laborStatus interfaces.LaborStatusLookup, log *zap.Logger) *ProcessEventUseCase {
	return &ProcessEventUseCase{
		store:       store,
		vehicles:    vehicles,
		laborStatus: laborStatus,
		log:         log,
		now:         time.Now,
	}
}

// Handle processes one event. seen is the batch-scoped duplicate-suppression
// map owned by the caller's consume loop; passing nil disables suppression.
//
// Returned errors follow the transport contract: nil means done (including
// "skipped: unrecognized or stale"), ErrStoreThrottled-wrapped errors mean
// requeue with delay, ErrValidation-wrapped errors mean skip without retry,
// anything else goes to the dead-letter channel.
func (u *ProcessEventUseCase) Handle(ctx context.Context, ev entities.Event, seen map[string]struct{}) error {
	kind := ev.Kind
	if kind == entities.KindUnknown {
		var ok bool
		if kind, ok = entities.Classify(ev); !ok {
			u.log.Warn("unrecognized event, skipping",
				zap.Strings("key_names", ev.KeyNames), zap.String("source_table", ev.SourceTable))
			return nil
		}
		ev.Kind = kind
	}

	if seen != nil {
		id := kind.String() + "|" + eventWorkOrderKey(ev) + "|" + ev.Updated
		if _, dup := seen[id]; dup {
			u.log.Info("duplicate event in batch, skipping",
				zap.String("kind", kind.String()), zap.String("updated", ev.Updated))
			return nil
		}
		seen[id] = struct{}{}
	}

	if ev.IsDelete {
		if kind == entities.KindRetailRecon {
			return u.handleRetailReconRemove(ctx, ev)
		}
		u.log.Info("ignoring remove event", zap.String("kind", kind.String()))
		return nil
	}

	var err error
	switch kind {
	case entities.KindApproval:
		err = u.handleApproval(ctx, ev)
	case entities.KindCapture:
		err = u.handleCapture(ctx, ev)
	case entities.KindOffering:
		err = u.handleOffering(ctx, ev)
	case entities.KindLaborStatus:
		err = u.handleLaborStatus(ctx, ev)
	case entities.KindWorkCredit:
		err = u.handleWorkCredit(ctx, ev)
	case entities.KindRetailRecon:
		err = u.handleRetailRecon(ctx, ev)
	case entities.KindCertification, entities.KindCondition, entities.KindDetail:
		_, err = u.storeEntityRecord(ctx, ev, kind.String())
	default:
		u.log.Warn("no handler for event kind", zap.String("kind", kind.String()))
		return nil
	}

	if errors.Is(err, entities.ErrValidation) {
		u.log.Warn("event failed validation, skipping",
			zap.String("kind", kind.String()), zap.Error(err))
		return nil
	}
	return err
}

// identity is the slice of fields shared by every sub-record of a work order.
type identity struct {
	workOrderKey    string
	sblu            string
	siteID          string
	vin             string
	workOrderNumber string
}

// resolveIdentity derives the work-order identity from the event payload,
// backfilling VIN and work-order-number from the reference lookup when the
// event arrives without them. Lookup misses leave the fields blank; lookup
// errors are logged and likewise non-fatal.
func (u *ProcessEventUseCase) resolveIdentity(ctx context.Context, img map[string]any) (identity, error) {
	id := identity{
		workOrderKey:    normalize.ToString(img["work_order_key"]),
		sblu:            normalize.ToString(img["sblu"]),
		siteID:          normalize.ToString(img["site_id"]),
		vin:             normalize.ToString(img["vin"]),
		workOrderNumber: normalize.ToString(img["work_order_number"]),
	}

	if id.workOrderKey == "" {
		woKey, err := entities.ComposeWorkOrderKey(id.sblu, id.siteID)
		if err != nil {
			return identity{}, err
		}
		id.workOrderKey = woKey
	}
	if id.sblu == "" || id.siteID == "" {
		parts := splitWorkOrderKey(id.workOrderKey)
		if id.sblu == "" {
			id.sblu = parts[0]
		}
		if id.siteID == "" && len(parts) > 1 {
			id.siteID = parts[1]
		}
	}

	if id.vin == "" || id.workOrderNumber == "" {
		info, ok, err := u.vehicles.Find(ctx, id.workOrderKey)
		if err != nil {
			u.log.Warn("vehicle lookup failed, leaving identifiers blank",
				zap.String("work_order_key", id.workOrderKey), zap.Error(err))
		} else if ok {
			if id.vin == "" {
				id.vin = info.VIN
			}
			if id.workOrderNumber == "" {
				id.workOrderNumber = info.WorkOrderNumber
			}
		}
	}
	return id, nil
}

// baseRecord is the common attribute set carried by every sub-record write.
func (id identity) baseRecord(entityType string) map[string]any {
	rec := map[string]any{
		"sblu":        id.sblu,
		"site_id":     id.siteID,
		"entity_type": entityType,
	}
	// VIN and work-order-number participate in a sparse GSI; blank values are
	// omitted rather than stored empty.
	if id.vin != "" {
		rec["vin"] = id.vin
	}
	if id.workOrderNumber != "" {
		rec["work_order_number"] = id.workOrderNumber
	}
	return rec
}

// storeEntityRecord is the generic singleton-entity path shared by the
// certification, condition, detail (and capture, retail-recon) handlers: one
// flat guarded merge of the snakecased order payload under a fixed sort key.
func (u *ProcessEventUseCase) storeEntityRecord(ctx context.Context, ev entities.Event, entityType string) (identity, error) {
	id, err := u.resolveIdentity(ctx, ev.New)
	if err != nil {
		return identity{}, err
	}

	record := id.baseRecord(entityType)
	for k, v := range normalize.Fields(normalize.MapValue(ev.New, "order"), nil) {
		record[k] = v
	}
	record["key_src"] = keySource(ev)

	plan := entities.BuildWritePlan(record, nil, "", entities.DefaultGuardAttr, ev.Updated)
	outcome, err := u.store.Apply(ctx, entities.EntityKey(id.workOrderKey, entityType), plan)
	if err != nil {
		return id, err
	}
	u.log.Debug("entity record stored",
		zap.String("work_order_key", id.workOrderKey),
		zap.String("entity_type", entityType),
		zap.String("outcome", outcome.String()))
	return id, nil
}

func keySource(ev entities.Event) string {
	if len(ev.KeyNames) == 0 {
		return ev.SourceTable
	}
	src := ""
	for _, k := range ev.KeyNames {
		src += k
	}
	return src
}

func eventWorkOrderKey(ev entities.Event) string {
	img := ev.New
	if ev.IsDelete && len(ev.Old) > 0 {
		img = ev.Old
	}
	if wo := normalize.ToString(img["work_order_key"]); wo != "" {
		return wo
	}
	sblu := normalize.ToString(img["sblu"])
	site := normalize.ToString(img["site_id"])
	if sblu != "" && site != "" {
		return sblu + "#" + site
	}
	return normalize.ToString(img["pk"])
}

func splitWorkOrderKey(woKey string) []string {
	return strings.SplitN(woKey, "#", 2)
}

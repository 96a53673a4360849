package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/MayureshM/rpp-workorder/internal/domain/entities"
	"github.com/MayureshM/rpp-workorder/internal/usecase/interfaces"
)

var (
	ErrWorkOrderNotFound  = errors.New("work order not found")
	ErrInvalidWorkOrderID = errors.New("either work_order_key or work_order_number with site_id is required")
)

// IFindWorkOrderUseCase exposes the read side: a work order summary by its
// composed key, or the records matching a work-order number within a site.
type IFindWorkOrderUseCase interface {
	FindByKey(ctx context.Context, workOrderKey string) (map[string]any, error)
	FindByNumber(ctx context.Context, workOrderNumber, siteID string) ([]map[string]any, error)
}

type FindWorkOrderUseCase struct {
	store interfaces.WorkOrderStore
}

var _ IFindWorkOrderUseCase = (*FindWorkOrderUseCase)(nil)

func NewFindWorkOrderUseCase(store interfaces.WorkOrderStore) *FindWorkOrderUseCase {
	return &FindWorkOrderUseCase{store: store}
}

func (u *FindWorkOrderUseCase) FindByKey(ctx context.Context, workOrderKey string) (map[string]any, error) {
	workOrderKey = strings.TrimSpace(workOrderKey)
	if workOrderKey == "" || !strings.Contains(workOrderKey, "#") {
		return nil, ErrInvalidWorkOrderID
	}

	record, err := u.store.Get(ctx, entities.SummaryKey(workOrderKey))
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrWorkOrderNotFound
	}
	return record, nil
}

func (u *FindWorkOrderUseCase) FindByNumber(ctx context.Context, workOrderNumber, siteID string) ([]map[string]any, error) {
	workOrderNumber = strings.TrimSpace(workOrderNumber)
	siteID = strings.TrimSpace(siteID)
	if workOrderNumber == "" || siteID == "" {
		return nil, ErrInvalidWorkOrderID
	}

	records, err := u.store.FindByWorkOrderNumber(ctx, workOrderNumber, siteID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrWorkOrderNotFound
	}
	return records, nil
}

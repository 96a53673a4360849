package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	request "github.com/MayureshM/rpp-workorder/internal/adapter/http/dto/request"
	response "github.com/MayureshM/rpp-workorder/internal/adapter/http/dto/response"
	"github.com/MayureshM/rpp-workorder/internal/usecase"
	"github.com/MayureshM/rpp-workorder/pkg"
)

var errInvalidWorkOrderQuery = pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid work order query", http.StatusBadRequest)

// WorkOrderHandler handles HTTP reads against the work order table.
type WorkOrderHandler struct {
	usecase usecase.IFindWorkOrderUseCase
}

func NewWorkOrderHandler(uc usecase.IFindWorkOrderUseCase) *WorkOrderHandler {
	return &WorkOrderHandler{usecase: uc}
}

// GetSummary returns the summary record for a work order key.
//
// @Summary  Get a work order summary
// @Tags     workorders
// @Produce  json
// @Param    work_order_key  query  string  true  "sblu#site_id"
// @Success  200  {object}  response.WorkOrderResponse
// @Failure  400  {object}  pkg.HTTPError
// @Failure  404  {object}  pkg.HTTPError
// @Router   /workorders/summary [get]
func (h *WorkOrderHandler) GetSummary(c *gin.Context) {
	var query request.WorkOrderQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(errInvalidWorkOrderQuery.HTTPStatus, errInvalidWorkOrderQuery.ToHTTPError())
		return
	}

	record, err := h.usecase.FindByKey(c.Request.Context(), query.ResolveKey())
	if err != nil {
		appErr := mapWorkOrderError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromRecord(record))
}

// Search returns the records matching a work order number within a site.
//
// @Summary  Find work orders by number
// @Tags     workorders
// @Produce  json
// @Param    work_order_number  query  string  true  "work order number"
// @Param    site_id            query  string  true  "auction site identifier"
// @Success  200  {array}   response.WorkOrderResponse
// @Failure  400  {object}  pkg.HTTPError
// @Failure  404  {object}  pkg.HTTPError
// @Router   /workorders/search [get]
func (h *WorkOrderHandler) Search(c *gin.Context) {
	var query request.WorkOrderQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(errInvalidWorkOrderQuery.HTTPStatus, errInvalidWorkOrderQuery.ToHTTPError())
		return
	}

	workOrderNumber, siteID := query.ResolveNumber()
	records, err := h.usecase.FindByNumber(c.Request.Context(), workOrderNumber, siteID)
	if err != nil {
		appErr := mapWorkOrderError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromRecords(records))
}

func mapWorkOrderError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrInvalidWorkOrderID):
		return pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid work order query", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrWorkOrderNotFound):
		return pkg.NewDomainErrorSimple("WORK_ORDER_NOT_FOUND", "Work order not found", http.StatusNotFound)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}

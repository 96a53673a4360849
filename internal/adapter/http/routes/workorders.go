package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/MayureshM/rpp-workorder/internal/adapter/http/handlers"
)

const (
	PathWorkOrders = "/workorders"
)

func addWorkOrderRoutes(rg *gin.RouterGroup, workOrderHandler *handlers.WorkOrderHandler) {
	workorders := rg.Group(PathWorkOrders)
	{
		workorders.GET("/summary", workOrderHandler.GetSummary)
		workorders.GET("/search", workOrderHandler.Search)
	}
}

package routes

import (
	"log"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/MayureshM/rpp-workorder/docs" // This will be auto-generated
	"github.com/MayureshM/rpp-workorder/internal/adapter/http/handlers"
	repository2 "github.com/MayureshM/rpp-workorder/internal/adapter/persistence/repository"
	"github.com/MayureshM/rpp-workorder/internal/infrastructure/config"
	"github.com/MayureshM/rpp-workorder/internal/infrastructure/database"
	"github.com/MayureshM/rpp-workorder/internal/usecase"
)

var router = gin.Default()

// Run will start the server
func Run() {
	setMiddlewares()

	// Swagger documentation endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	cfg := config.Load()
	getRoutes()

	err := router.Run(":" + cfg.HTTPPort)
	if err != nil {
		log.Fatalf("Failed to startup the application: %v", err.Error())
	}
}

func getRoutes() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}

	ddb := database.ConnectDynamoDB()

	workOrderRepo := repository2.NewWorkOrderDynamoRepository(ddb, logger)
	findUseCase := usecase.NewFindWorkOrderUseCase(workOrderRepo)

	workOrderHandler := handlers.NewWorkOrderHandler(findUseCase)

	// Rotas publicas
	v1 := router.Group("/v1")
	addPingRoutes(v1)
	addWorkOrderRoutes(v1, workOrderHandler)
}

func setMiddlewares() {
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Printf("Recovered from panic: %v", recovered)
		c.AbortWithStatus(500)
	}))
}

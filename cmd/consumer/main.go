package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/joho/godotenv/autoload"

	"github.com/MayureshM/rpp-workorder/internal/adapter/persistence/repository"
	"github.com/MayureshM/rpp-workorder/internal/adapter/transport"
	"github.com/MayureshM/rpp-workorder/internal/infrastructure/awsclients"
	"github.com/MayureshM/rpp-workorder/internal/infrastructure/config"
	"github.com/MayureshM/rpp-workorder/internal/infrastructure/database"
	"github.com/MayureshM/rpp-workorder/internal/infrastructure/lookup"
	"github.com/MayureshM/rpp-workorder/internal/usecase"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ddb := database.ConnectDynamoDB()
	lambdaClient := awsclients.ConnectLambda()
	sqsClient := awsclients.ConnectSQS()
	kinesisClient := awsclients.ConnectKinesis()
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	store := repository.NewWorkOrderDynamoRepository(ddb, logger)

	vehicles := lookup.NewCachedVehicleLookup(
		lookup.NewVehicleLambdaClient(lambdaClient, cfg.VehicleFunctionName, logger),
		rdb,
		cfg.VehicleCacheTTL,
		logger,
	)
	laborStatus := lookup.NewLaborStatusLambdaClient(lambdaClient, cfg.LaborStatusFunctionName, logger)

	processor := usecase.NewProcessEventUseCase(store, vehicles, laborStatus, logger)

	retry := transport.NewPublisher(sqsClient, cfg.RetryQueueURL, logger)
	deadLetter := transport.NewPublisher(sqsClient, cfg.DeadLetterQueueURL, logger)

	stream := transport.NewStreamConsumer(kinesisClient, processor, retry, deadLetter, cfg.EventStreamName, logger)
	queue := transport.NewQueueConsumer(sqsClient, processor, deadLetter, cfg.RetryQueueURL, logger)

	done := make(chan struct{}, 2)
	go func() {
		if err := stream.Run(ctx); err != nil {
			logger.Error("stream consumer stopped", zap.Error(err))
		}
		done <- struct{}{}
	}()
	go func() {
		if err := queue.Run(ctx); err != nil {
			logger.Error("queue consumer stopped", zap.Error(err))
		}
		done <- struct{}{}
	}()

	<-ctx.Done()
	logger.Info("shutdown requested, draining consumers")
	<-done
	<-done
}

package database

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/MayureshM/rpp-workorder/internal/infrastructure/awsclients"
)

// ConnectDynamoDB creates the DynamoDB client for the aggregate table, using
// the same env conventions as the other AWS clients. DYNAMODB_ENDPOINT
// (e.g. http://dynamodb:8000) overrides the endpoint for this client only,
// taking precedence over AWS_ENDPOINT.
func ConnectDynamoDB() *dynamodb.Client {
	cfg, err := awsclients.NewConfigFromEnv(context.Background())
	if err != nil {
		log.Fatalf("failed to create dynamodb config: %v", err)
	}

	var opts []func(*dynamodb.Options)
	if endpoint := os.Getenv("DYNAMODB_ENDPOINT"); endpoint != "" {
		opts = append(opts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}
	return dynamodb.NewFromConfig(cfg, opts...)
}

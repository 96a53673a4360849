package repository

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"github.com/MayureshM/rpp-workorder/internal/domain/entities"
	"github.com/MayureshM/rpp-workorder/internal/usecase/interfaces"
)

const (
	defaultWorkOrderTableName = "rpp-recon-work-order"
	workOrderNumberIndex      = "index_work_order_number"
)

// throttleCodes are transient capacity errors; the caller requeues with
// backoff instead of failing the event.
var throttleCodes = map[string]bool{
	"ProvisionedThroughputExceededException": true,
	"ThrottlingException":                    true,
	"RequestLimitExceeded":                   true,
}

// DynamoDBAPI is the slice of the DynamoDB client the repository uses.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// workOrderItem is the typed projection used by the read API lookup.
type workOrderItem struct {
	PK              string `dynamodbav:"pk"`
	SK              string `dynamodbav:"sk"`
	SBLU            string `dynamodbav:"sblu"`
	SiteID          string `dynamodbav:"site_id"`
	VIN             string `dynamodbav:"vin,omitempty"`
	WorkOrderNumber string `dynamodbav:"work_order_number,omitempty"`
	EntityType      string `dynamodbav:"entity_type,omitempty"`
}

// WorkOrderDynamoRepository is the conditional write executor for the
// aggregate table.
//
// Table requirements:
//   - PK: pk (string), SK: sk (string)
//   - GSI: index_work_order_number (PK: work_order_number, SK: site_id)
//
// Every guarded write goes through Apply; nothing else in the process mutates
// guarded attributes, so last-writer-wins holds per sub-record without any
// external locking.

type WorkOrderDynamoRepository struct {
	ddb       DynamoDBAPI
	tableName string
	log       *zap.Logger
}

var _ interfaces.WorkOrderStore = (*WorkOrderDynamoRepository)(nil)

func NewWorkOrderDynamoRepository(ddb DynamoDBAPI, log *zap.Logger) *WorkOrderDynamoRepository {
	return &WorkOrderDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("WORKORDER_AM_TABLE", defaultWorkOrderTableName),
		log:       log,
	}
}

// Apply issues the plan's conditional merge. State machine per attempt:
//
//  1. UpdateItem with "attribute_not_exists(#guard) OR #guard <= :guard".
//  2. ConditionalCheckFailedException → WriteSkippedStale, no error. A newer
//     or equal write already landed; this is the concurrency control working.
//  3. ValidationException on a nested plan → the container does not exist in
//     the stored item yet; retry once writing the container as a whole map
//     under the same guard plus attribute_not_exists(container).
//  4. Throttling → wrapped ErrStoreThrottled for the transport layer.
//
// Re-applying an identical plan is a no-op: the stored guard equals the
// incoming one and <= admits it, writing the same values again.
func (r *WorkOrderDynamoRepository) Apply(ctx context.Context, key entities.Key, plan entities.WritePlan) (entities.WriteOutcome, error) {
	outcome, err := r.update(ctx, key, plan, false)
	if err == nil {
		return outcome, nil
	}

	if plan.Container != "" && isShapeMismatch(err) {
		r.log.Debug("container absent, retrying with container create",
			zap.String("pk", key.PK), zap.String("sk", key.SK), zap.String("container", plan.Container))
		outcome, err = r.update(ctx, key, plan, true)
		if err == nil {
			return outcome, nil
		}
	}

	return entities.WriteSkippedStale, r.classify(err, key)
}

func (r *WorkOrderDynamoRepository) update(ctx context.Context, key entities.Key, plan entities.WritePlan, createContainer bool) (entities.WriteOutcome, error) {
	ru, err := renderUpdate(plan, createContainer)
	if err != nil {
		return entities.WriteSkippedStale, fmt.Errorf("%w: %v", entities.ErrValidation, err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       keyAttributes(key),
		UpdateExpression:          aws.String(ru.expression),
		ExpressionAttributeNames:  ru.names,
		ReturnValues:              types.ReturnValueUpdatedNew,
	}
	if len(ru.values) > 0 {
		input.ExpressionAttributeValues = ru.values
	}
	if ru.condition != "" {
		input.ConditionExpression = aws.String(ru.condition)
	}

	r.log.Debug("conditional update",
		zap.String("pk", key.PK), zap.String("sk", key.SK),
		zap.String("update_expression", ru.expression),
		zap.String("condition_expression", ru.condition))

	_, err = r.ddb.UpdateItem(ctx, input)
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			r.log.Info("stale write rejected",
				zap.String("pk", key.PK), zap.String("sk", key.SK),
				zap.String("guard_attr", plan.GuardAttr), zap.String("guard", plan.Guard))
			return entities.WriteSkippedStale, nil
		}
		return entities.WriteSkippedStale, err
	}

	if createContainer {
		return entities.WriteCreatedContainer, nil
	}
	return entities.WriteApplied, nil
}

// Get returns the record as plain data, or nil when absent.
func (r *WorkOrderDynamoRepository) Get(ctx context.Context, key entities.Key) (map[string]any, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            keyAttributes(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, r.classify(err, key)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	return fromAttributeValueMap(out.Item), nil
}

// QueryPrefix returns all sub-records under pk whose sort key begins with
// skPrefix, in sort-key order.
func (r *WorkOrderDynamoRepository) QueryPrefix(ctx context.Context, pk, skPrefix string) ([]map[string]any, error) {
	var items []map[string]any
	var startKey map[string]types.AttributeValue

	for {
		out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			KeyConditionExpression: aws.String("#pk = :pk AND begins_with(#sk, :sk)"),
			ExpressionAttributeNames: map[string]string{
				"#pk": "pk",
				"#sk": "sk",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: pk},
				":sk": &types.AttributeValueMemberS{Value: skPrefix},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, r.classify(err, entities.Key{PK: pk, SK: skPrefix})
		}
		for _, raw := range out.Items {
			items = append(items, fromAttributeValueMap(raw))
		}
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return items, nil
}

// Delete removes a sub-record, requiring it to exist so deletes of missing
// records surface instead of silently succeeding.
func (r *WorkOrderDynamoRepository) Delete(ctx context.Context, key entities.Key) error {
	_, err := r.ddb.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 keyAttributes(key),
		ConditionExpression: aws.String("attribute_exists(pk)"),
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return fmt.Errorf("delete %s/%s: %w", key.PK, key.SK, entities.ErrNotFound)
		}
		return r.classify(err, key)
	}
	return nil
}

// FindByWorkOrderNumber resolves work-order summary rows through the
// work-order-number GSI for the read API.
func (r *WorkOrderDynamoRepository) FindByWorkOrderNumber(ctx context.Context, workOrderNumber, siteID string) ([]map[string]any, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(workOrderNumberIndex),
		KeyConditionExpression: aws.String("work_order_number = :won AND site_id = :sid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":won": &types.AttributeValueMemberS{Value: workOrderNumber},
			":sid": &types.AttributeValueMemberS{Value: siteID},
		},
	})
	if err != nil {
		return nil, r.classify(err, entities.Key{})
	}

	var typed []workOrderItem
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &typed); err != nil {
		return nil, fmt.Errorf("unmarshal work order rows: %w", err)
	}

	items := make([]map[string]any, 0, len(out.Items))
	for i, raw := range out.Items {
		item := fromAttributeValueMap(raw)
		// the typed projection guarantees the identity fields survive even
		// when sparse rows carry unexpected shapes
		item["pk"] = typed[i].PK
		item["sk"] = typed[i].SK
		items = append(items, item)
	}
	return items, nil
}

func (r *WorkOrderDynamoRepository) classify(err error, key entities.Key) error {
	if err == nil {
		return nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && throttleCodes[apiErr.ErrorCode()] {
		r.log.Warn("store throttled",
			zap.String("pk", key.PK), zap.String("sk", key.SK), zap.String("code", apiErr.ErrorCode()))
		return errors.Join(entities.ErrStoreThrottled, err)
	}
	return err
}

func isShapeMismatch(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "ValidationException"
}

func keyAttributes(key entities.Key) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: key.PK},
		"sk": &types.AttributeValueMemberS{Value: key.SK},
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"go.uber.org/zap"

	"github.com/MayureshM/rpp-workorder/internal/domain/normalize"
	"github.com/MayureshM/rpp-workorder/internal/usecase/interfaces"
)

// LambdaAPI is the subset of the Lambda client the lookup clients invoke.
type LambdaAPI interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// VehicleLambdaClient resolves vehicle identity (VIN and work order number)
// for a work order key by invoking the pfvehicle finder function.
type VehicleLambdaClient struct {
	client       LambdaAPI
	functionName string
	log          *zap.Logger
}

var _ interfaces.VehicleLookup = (*VehicleLambdaClient)(nil)

func NewVehicleLambdaClient(client LambdaAPI, functionName string, log *zap.Logger) *VehicleLambdaClient {
	return &VehicleLambdaClient{client: client, functionName: functionName, log: log}
}

func (c *VehicleLambdaClient) Find(ctx context.Context, workOrderKey string) (interfaces.VehicleInfo, bool, error) {
	record, ok, err := c.invoke(ctx, workOrderKey)
	if err != nil || !ok {
		return interfaces.VehicleInfo{}, false, err
	}

	info := interfaces.VehicleInfo{
		VIN:             AssembleVIN(record),
		WorkOrderNumber: normalize.ToString(record["work_order_number"]),
	}
	if info.WorkOrderNumber == "" {
		info.WorkOrderNumber = normalize.ToString(record["workOrderNumber"])
	}
	if info.VIN == "" && info.WorkOrderNumber == "" {
		return interfaces.VehicleInfo{}, false, nil
	}
	return info, true, nil
}

func (c *VehicleLambdaClient) invoke(ctx context.Context, workOrderKey string) (map[string]any, bool, error) {
	payload, err := json.Marshal(map[string]string{"work_order_key": workOrderKey})
	if err != nil {
		return nil, false, err
	}

	out, err := c.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName: aws.String(c.functionName),
		Payload:      payload,
	})
	if err != nil {
		return nil, false, fmt.Errorf("invoke %s: %w", c.functionName, err)
	}
	if out.FunctionError != nil {
		return nil, false, fmt.Errorf("invoke %s: function error: %s", c.functionName, *out.FunctionError)
	}
	if len(out.Payload) == 0 || string(out.Payload) == "null" {
		return nil, false, nil
	}

	var record map[string]any
	dec := json.NewDecoder(bytes.NewReader(out.Payload))
	dec.UseNumber()
	if err := dec.Decode(&record); err != nil {
		return nil, false, fmt.Errorf("decode %s response: %w", c.functionName, err)
	}
	if len(record) == 0 {
		return nil, false, nil
	}
	return record, true, nil
}

// AssembleVIN rebuilds the VIN from the pfvehicle record. The feed splits it
// into vin1..vin11 plus vin_last_6; the full VIN exists only when every piece
// does. Otherwise the previously captured VIN is used, if any.
func AssembleVIN(record map[string]any) string {
	parts := make([]string, 0, 12)
	for i := 1; i <= 11; i++ {
		v := normalize.ToString(record[fmt.Sprintf("vin%d", i)])
		if v == "" {
			parts = nil
			break
		}
		parts = append(parts, v)
	}
	if parts != nil {
		if last := normalize.ToString(record["vin_last_6"]); last != "" {
			return strings.Join(parts, "") + last
		}
	}
	return normalize.ToString(record["previousVin"])
}

package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"go.uber.org/zap"

	"github.com/MayureshM/rpp-workorder/internal/usecase/interfaces"
)

// LaborStatusLambdaClient fetches the labor status row for a damage key by
// invoking the labor status reader function.
type LaborStatusLambdaClient struct {
	client       LambdaAPI
	functionName string
	log          *zap.Logger
}

var _ interfaces.LaborStatusLookup = (*LaborStatusLambdaClient)(nil)

func NewLaborStatusLambdaClient(client LambdaAPI, functionName string, log *zap.Logger) *LaborStatusLambdaClient {
	return &LaborStatusLambdaClient{client: client, functionName: functionName, log: log}
}

func (c *LaborStatusLambdaClient) Find(ctx context.Context, workOrderKey, isdtKey string) (map[string]any, bool, error) {
	payload, err := json.Marshal(map[string]string{
		"work_order_key": workOrderKey,
		"sk":             isdtKey,
	})
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

	var status map[string]any
	dec := json.NewDecoder(bytes.NewReader(out.Payload))
	dec.UseNumber()
	if err := dec.Decode(&status); err != nil {
		return nil, false, fmt.Errorf("decode %s response: %w", c.functionName, err)
	}
	if len(status) == 0 {
		return nil, false, nil
	}
	return status, true, nil
}

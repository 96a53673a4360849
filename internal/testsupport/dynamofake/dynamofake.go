// Package dynamofake is an in-memory stand-in for the DynamoDB client,
// covering exactly the request shapes the repository issues: conditional
// UpdateItem with guard expressions, consistent GetItem, begins_with Query,
// GSI Query and conditional DeleteItem.
package dynamofake

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

type Fake struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue

	// NextErr is returned (and cleared) by the next API call. Used to
	// exercise throttle and fault paths.
	NextErr error
}

func New() *Fake {
	return &Fake{items: map[string]map[string]types.AttributeValue{}}
}

func itemKey(key map[string]types.AttributeValue) string {
	pk := key["pk"].(*types.AttributeValueMemberS).Value
	sk := key["sk"].(*types.AttributeValueMemberS).Value
	return pk + "\x00" + sk
}

// Seed stores an item directly, bypassing all conditions.
func (f *Fake) Seed(pk, sk string, attrs map[string]types.AttributeValue) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item := map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: pk},
		"sk": &types.AttributeValueMemberS{Value: sk},
	}
	for k, v := range attrs {
		item[k] = v
	}
	f.items[pk+"\x00"+sk] = item
}

// Item returns a stored item, or nil.
func (f *Fake) Item(pk, sk string) map[string]types.AttributeValue {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyItem(f.items[pk+"\x00"+sk])
}

// Len reports the number of stored items.
func (f *Fake) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

func (f *Fake) takeErr() error {
	err := f.NextErr
	f.NextErr = nil
	return err
}

func (f *Fake) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr(); err != nil {
		return nil, err
	}
	return &dynamodb.GetItemOutput{Item: copyItem(f.items[itemKey(params.Key)])}, nil
}

func (f *Fake) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr(); err != nil {
		return nil, err
	}
	k := itemKey(params.Key)
	if aws.ToString(params.ConditionExpression) == "attribute_exists(pk)" {
		if _, ok := f.items[k]; !ok {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
		}
	}
	delete(f.items, k)
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *Fake) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr(); err != nil {
		return nil, err
	}

	var out []map[string]types.AttributeValue
	if params.IndexName != nil {
		won := params.ExpressionAttributeValues[":won"].(*types.AttributeValueMemberS).Value
		sid := params.ExpressionAttributeValues[":sid"].(*types.AttributeValueMemberS).Value
		for _, item := range f.items {
			if stringAttr(item, "work_order_number") == won && stringAttr(item, "site_id") == sid {
				out = append(out, copyItem(item))
			}
		}
	} else {
		pk := params.ExpressionAttributeValues[":pk"].(*types.AttributeValueMemberS).Value
		prefix := params.ExpressionAttributeValues[":sk"].(*types.AttributeValueMemberS).Value
		for _, item := range f.items {
			if stringAttr(item, "pk") == pk && strings.HasPrefix(stringAttr(item, "sk"), prefix) {
				out = append(out, copyItem(item))
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return stringAttr(out[i], "sk") < stringAttr(out[j], "sk")
	})
	return &dynamodb.QueryOutput{Items: out, Count: int32(len(out))}, nil
}

func (f *Fake) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr(); err != nil {
		return nil, err
	}

	k := itemKey(params.Key)
	item := f.items[k]
	exists := item != nil
	if !exists {
		item = map[string]types.AttributeValue{
			"pk": params.Key["pk"],
			"sk": params.Key["sk"],
		}
	}

	if cond := aws.ToString(params.ConditionExpression); cond != "" {
		ok, err := evalCondition(cond, item, params.ExpressionAttributeNames, params.ExpressionAttributeValues)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
		}
	}

	updated, err := applyExpression(aws.ToString(params.UpdateExpression), copyItem(item), params.ExpressionAttributeNames, params.ExpressionAttributeValues)
	if err != nil {
		return nil, err
	}
	f.items[k] = updated
	return &dynamodb.UpdateItemOutput{}, nil
}

// evalCondition handles the grammar the repository emits:
//
//	attribute_not_exists(#g) OR #g <= :g
//	(attribute_not_exists(#g) OR #g <= :g) AND attribute_not_exists(#ctr)
//	attribute_not_exists(#ctr)
func evalCondition(cond string, item map[string]types.AttributeValue, names map[string]string, values map[string]types.AttributeValue) (bool, error) {
	for _, part := range strings.Split(cond, " AND ") {
		part = strings.TrimPrefix(strings.TrimSuffix(strings.TrimSpace(part), ")"), "(")
		if ok, err := evalClause(part, item, names, values); err != nil || !ok {
			return ok, err
		}
	}
	return true, nil
}

func evalClause(clause string, item map[string]types.AttributeValue, names map[string]string, values map[string]types.AttributeValue) (bool, error) {
	if or := strings.Split(clause, " OR "); len(or) == 2 {
		left, err := evalClause(strings.TrimSpace(or[0]), item, names, values)
		if err != nil || left {
			return left, err
		}
		return evalClause(strings.TrimSpace(or[1]), item, names, values)
	}

	switch {
	case strings.HasPrefix(clause, "attribute_not_exists("):
		attr := resolveName(strings.TrimSuffix(strings.TrimPrefix(clause, "attribute_not_exists("), ")"), names)
		_, ok := item[attr]
		return !ok, nil

	case strings.Contains(clause, " <= "):
		parts := strings.SplitN(clause, " <= ", 2)
		attr := resolveName(strings.TrimSpace(parts[0]), names)
		want := values[strings.TrimSpace(parts[1])]
		have, ok := item[attr]
		if !ok {
			return false, nil
		}
		return numericLE(have, want)

	default:
		return false, fmt.Errorf("dynamofake: unsupported condition clause %q", clause)
	}
}

func numericLE(have, want types.AttributeValue) (bool, error) {
	hn, ok := have.(*types.AttributeValueMemberN)
	if !ok {
		return false, &smithy.GenericAPIError{Code: "ValidationException", Message: "operand is not a number"}
	}
	wn := want.(*types.AttributeValueMemberN)
	h, err := strconv.ParseFloat(hn.Value, 64)
	if err != nil {
		return false, err
	}
	w, err := strconv.ParseFloat(wn.Value, 64)
	if err != nil {
		return false, err
	}
	return h <= w, nil
}

func applyExpression(expr string, item map[string]types.AttributeValue, names map[string]string, values map[string]types.AttributeValue) (map[string]types.AttributeValue, error) {
	var setClause, removeClause string
	if i := strings.Index(expr, "REMOVE "); i >= 0 {
		removeClause = strings.TrimSpace(expr[i+len("REMOVE "):])
		expr = strings.TrimSpace(expr[:i])
	}
	if strings.HasPrefix(expr, "SET ") {
		setClause = strings.TrimPrefix(expr, "SET ")
	}

	for _, part := range splitList(setClause) {
		kv := strings.SplitN(part, " = ", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("dynamofake: malformed set %q", part)
		}
		if err := setPath(item, strings.TrimSpace(kv[0]), values[strings.TrimSpace(kv[1])], names); err != nil {
			return nil, err
		}
	}
	for _, part := range splitList(removeClause) {
		if err := removePath(item, strings.TrimSpace(part), names); err != nil {
			return nil, err
		}
	}
	return item, nil
}

func splitList(clause string) []string {
	if clause == "" {
		return nil
	}
	parts := strings.Split(clause, ", ")
	return parts
}

func setPath(item map[string]types.AttributeValue, path string, value types.AttributeValue, names map[string]string) error {
	segments := strings.Split(path, ".")
	if len(segments) == 1 {
		item[resolveName(segments[0], names)] = value
		return nil
	}

	// nested path: parent must already be a map, as on the real service
	parent := resolveName(segments[0], names)
	m, ok := item[parent].(*types.AttributeValueMemberM)
	if !ok {
		return &smithy.GenericAPIError{
			Code:    "ValidationException",
			Message: "The document path provided in the update expression is invalid for update",
		}
	}
	m.Value[resolveName(segments[1], names)] = value
	return nil
}

func removePath(item map[string]types.AttributeValue, path string, names map[string]string) error {
	segments := strings.Split(path, ".")
	if len(segments) == 1 {
		delete(item, resolveName(segments[0], names))
		return nil
	}
	parent := resolveName(segments[0], names)
	m, ok := item[parent].(*types.AttributeValueMemberM)
	if !ok {
		return &smithy.GenericAPIError{
			Code:    "ValidationException",
			Message: "The document path provided in the update expression is invalid for update",
		}
	}
	delete(m.Value, resolveName(segments[1], names))
	return nil
}

func stringAttr(item map[string]types.AttributeValue, name string) string {
	if s, ok := item[name].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func resolveName(ref string, names map[string]string) string {
	if strings.HasPrefix(ref, "#") {
		if name, ok := names[ref]; ok {
			return name
		}
	}
	return ref
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	if item == nil {
		return nil
	}
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(av types.AttributeValue) types.AttributeValue {
	switch t := av.(type) {
	case *types.AttributeValueMemberM:
		m := make(map[string]types.AttributeValue, len(t.Value))
		for k, v := range t.Value {
			m[k] = copyValue(v)
		}
		return &types.AttributeValueMemberM{Value: m}
	case *types.AttributeValueMemberL:
		l := make([]types.AttributeValue, 0, len(t.Value))
		for _, v := range t.Value {
			l = append(l, copyValue(v))
		}
		return &types.AttributeValueMemberL{Value: l}
	default:
		return av
	}
}

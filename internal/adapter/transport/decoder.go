package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/MayureshM/rpp-workorder/internal/domain/entities"
	"github.com/MayureshM/rpp-workorder/internal/domain/normalize"
)

// DecodeRecord turns one raw change-capture payload (the JSON carried inside
// a stream record) into an Event. The payload is a DynamoDB stream envelope:
// images arrive in DynamoDB attribute-value JSON and are unwrapped into plain
// maps here, with numbers kept as json.Number so guard timestamps survive
// without float round-trips.
func DecodeRecord(data []byte) (entities.Event, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var envelope struct {
		EventName string `json:"eventName"`
		TableName string `json:"tableName"`
		DynamoDB  struct {
			Keys                        map[string]any `json:"Keys"`
			NewImage                    map[string]any `json:"NewImage"`
			OldImage                    map[string]any `json:"OldImage"`
			ApproximateCreationDateTime json.Number    `json:"ApproximateCreationDateTime"`
		} `json:"dynamodb"`
	}
	if err := dec.Decode(&envelope); err != nil {
		return entities.Event{}, fmt.Errorf("decode stream record: %w: %v", entities.ErrValidation, err)
	}
	if len(envelope.DynamoDB.Keys) == 0 {
		return entities.Event{}, fmt.Errorf("stream record without keys: %w", entities.ErrValidation)
	}

	keyNames := make([]string, 0, len(envelope.DynamoDB.Keys))
	for k := range envelope.DynamoDB.Keys {
		keyNames = append(keyNames, k)
	}
	sort.Strings(keyNames)

	ev := entities.Event{
		KeyNames:    keyNames,
		SourceTable: envelope.TableName,
		IsDelete:    envelope.EventName == "REMOVE",
		New:         unwrapImage(envelope.DynamoDB.NewImage),
		Old:         unwrapImage(envelope.DynamoDB.OldImage),
	}
	if kind, ok := entities.Classify(ev); ok {
		ev.Kind = kind
	}

	img := ev.New
	if ev.IsDelete && len(ev.Old) > 0 {
		img = ev.Old
	}
	updated, err := deriveUpdated(img, envelope.DynamoDB.ApproximateCreationDateTime)
	if err != nil {
		return entities.Event{}, err
	}
	ev.Updated = updated
	return ev, nil
}

// deriveUpdated picks the event's business timestamp: a retriggered event
// reuses its stored marker, lifecycle events carry updatedOn inside the
// order, and anything else falls back to the stream's creation time.
func deriveUpdated(img map[string]any, approxCreation json.Number) (string, error) {
	if retrigger, _ := img["retrigger_flag"].(bool); retrigger {
		if ts, err := normalize.CanonicalTimestamp(img["updated"]); err == nil {
			return ts, nil
		}
	}
	if order := normalize.MapValue(img, "order"); len(order) > 0 {
		if ts, err := normalize.CanonicalTimestamp(order["updatedOn"]); err == nil {
			return ts, nil
		}
	}
	if ts, err := normalize.CanonicalTimestamp(img["updated"]); err == nil {
		return ts, nil
	}
	if ts, err := normalize.CanonicalTimestamp(approxCreation); err == nil {
		return ts, nil
	}
	return "", fmt.Errorf("no usable event timestamp: %w", entities.ErrValidation)
}

// unwrapImage converts a DynamoDB attribute-value map into plain Go values.
func unwrapImage(img map[string]any) map[string]any {
	if len(img) == 0 {
		return nil
	}
	out := make(map[string]any, len(img))
	for k, v := range img {
		out[k] = unwrapValue(v)
	}
	return out
}

// unwrapValue unwraps one attribute value. Non-attribute shapes pass through
// untouched so already-plain payloads decode the same way.
func unwrapValue(v any) any {
	av, ok := v.(map[string]any)
	if !ok || len(av) != 1 {
		return v
	}
	for tag, inner := range av {
		switch tag {
		case "S":
			if s, ok := inner.(string); ok {
				return s
			}
		case "N":
			switch n := inner.(type) {
			case string:
				return json.Number(n)
			case json.Number:
				return n
			}
		case "BOOL":
			if b, ok := inner.(bool); ok {
				return b
			}
		case "NULL":
			return nil
		case "M":
			if m, ok := inner.(map[string]any); ok {
				return unwrapImage(m)
			}
		case "L":
			if list, ok := inner.([]any); ok {
				out := make([]any, len(list))
				for i, item := range list {
					out[i] = unwrapValue(item)
				}
				return out
			}
		case "SS", "NS":
			if list, ok := inner.([]any); ok {
				return list
			}
		}
	}
	return v
}

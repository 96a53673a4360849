package repository

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/MayureshM/rpp-workorder/internal/domain/entities"
)

// renderedUpdate is a WritePlan translated into DynamoDB expression form:
// SET/REMOVE clauses with placeholder maps so canonical attribute names never
// collide with reserved words.
type renderedUpdate struct {
	expression string
	condition  string
	names      map[string]string
	values     map[string]types.AttributeValue
}

// renderUpdate produces the UpdateItem pieces for a plan. With createContainer
// set, the nested container is written as one whole map guarded by an
// attribute_not_exists check on the container; this is the fallback path for
// shape mismatches and intentionally drops nested removes (there is nothing
// to remove inside a brand-new map).
func renderUpdate(plan entities.WritePlan, createContainer bool) (renderedUpdate, error) {
	if plan.Empty() && plan.GuardAttr == "" {
		return renderedUpdate{}, fmt.Errorf("render update: empty write plan")
	}
	if createContainer && plan.Container == "" {
		return renderedUpdate{}, fmt.Errorf("render update: container creation requested for flat plan")
	}

	ru := renderedUpdate{
		names:  map[string]string{},
		values: map[string]types.AttributeValue{},
	}
	tokens := newTokenSet()

	var setParts []string
	if plan.GuardAttr != "" {
		guard := tokens.forName(plan.GuardAttr)
		ru.names["#"+guard] = plan.GuardAttr
		ru.values[":"+guard] = &types.AttributeValueMemberN{Value: plan.Guard}
		setParts = append(setParts, fmt.Sprintf("#%s = :%s", guard, guard))
		ru.condition = fmt.Sprintf("attribute_not_exists(#%s) OR #%s <= :%s", guard, guard, guard)
	}

	if plan.Container != "" {
		tokens.reserve("ctr")
		ru.names["#ctr"] = plan.Container
	}

	switch {
	case createContainer:
		container := make(map[string]types.AttributeValue, len(plan.Set))
		for _, k := range sortedKeys(plan.Set) {
			av, err := toAttributeValue(plan.Set[k])
			if err != nil {
				return renderedUpdate{}, fmt.Errorf("render update: attribute %q: %w", k, err)
			}
			container[k] = av
		}
		ru.values[":ctr_data"] = &types.AttributeValueMemberM{Value: container}
		setParts = append(setParts, "#ctr = :ctr_data")
		if ru.condition != "" {
			ru.condition = "(" + ru.condition + ") AND attribute_not_exists(#ctr)"
		} else {
			ru.condition = "attribute_not_exists(#ctr)"
		}

	default:
		for _, k := range sortedKeys(plan.Set) {
			if k == plan.GuardAttr {
				continue
			}
			av, err := toAttributeValue(plan.Set[k])
			if err != nil {
				return renderedUpdate{}, fmt.Errorf("render update: attribute %q: %w", k, err)
			}
			p := tokens.forName(k)
			ru.names["#"+p] = k
			ru.values[":"+p] = av
			if plan.Container != "" {
				setParts = append(setParts, fmt.Sprintf("#ctr.#%s = :%s", p, p))
			} else {
				setParts = append(setParts, fmt.Sprintf("#%s = :%s", p, p))
			}
		}
	}

	var removeParts []string
	if !createContainer {
		for _, k := range plan.Remove {
			if k == plan.GuardAttr {
				continue
			}
			p := tokens.forName(k)
			ru.names["#"+p] = k
			if plan.Container != "" {
				removeParts = append(removeParts, "#ctr.#"+p)
			} else {
				removeParts = append(removeParts, "#"+p)
			}
		}
	}

	var clauses []string
	if len(setParts) > 0 {
		clauses = append(clauses, "SET "+strings.Join(setParts, ", "))
	}
	if len(removeParts) > 0 {
		clauses = append(clauses, "REMOVE "+strings.Join(removeParts, ", "))
	}
	if len(clauses) == 0 {
		return renderedUpdate{}, fmt.Errorf("render update: plan produced no clauses")
	}
	ru.expression = strings.Join(clauses, " ")
	return ru, nil
}

// tokenSet hands out one expression placeholder per attribute name within a
// single rendered update. Sanitizing can make distinct upstream names collide
// (e.g. "a-b" and "a_b"), so taken tokens get an index suffix.
type tokenSet struct {
	byName map[string]string
	taken  map[string]bool
}

func newTokenSet() *tokenSet {
	return &tokenSet{byName: map[string]string{}, taken: map[string]bool{}}
}

func (ts *tokenSet) forName(name string) string {
	if tok, ok := ts.byName[name]; ok {
		return tok
	}
	base := placeholder(name)
	tok := base
	for i := 2; ts.taken[tok]; i++ {
		tok = fmt.Sprintf("%s_%d", base, i)
	}
	ts.taken[tok] = true
	ts.byName[name] = tok
	return tok
}

func (ts *tokenSet) reserve(tok string) {
	ts.taken[tok] = true
}

// placeholder derives an expression placeholder from a canonical attribute
// name: only letters, digits and underscores survive.
func placeholder(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// toAttributeValue converts plain payload data into a DynamoDB attribute
// value. Numbers are carried as json.Number (or numeric-typed Go values); they
// always land as N so guard comparisons stay numeric.
func toAttributeValue(v any) (types.AttributeValue, error) {
	switch t := v.(type) {
	case nil:
		return &types.AttributeValueMemberNULL{Value: true}, nil
	case string:
		return &types.AttributeValueMemberS{Value: t}, nil
	case bool:
		return &types.AttributeValueMemberBOOL{Value: t}, nil
	case json.Number:
		return &types.AttributeValueMemberN{Value: t.String()}, nil
	case int:
		return &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", t)}, nil
	case int64:
		return &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", t)}, nil
	case float64:
		return &types.AttributeValueMemberN{Value: strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.6f", t), "0"), ".")}, nil
	case map[string]any:
		m := make(map[string]types.AttributeValue, len(t))
		for k, mv := range t {
			av, err := toAttributeValue(mv)
			if err != nil {
				return nil, err
			}
			m[k] = av
		}
		return &types.AttributeValueMemberM{Value: m}, nil
	case []any:
		l := make([]types.AttributeValue, 0, len(t))
		for _, lv := range t {
			av, err := toAttributeValue(lv)
			if err != nil {
				return nil, err
			}
			l = append(l, av)
		}
		return &types.AttributeValueMemberL{Value: l}, nil
	case types.AttributeValue:
		return t, nil
	default:
		return nil, fmt.Errorf("unsupported attribute type %T", v)
	}
}

// fromAttributeValue is the inverse of toAttributeValue; N values come back
// as json.Number so nothing is forced through a binary float.
func fromAttributeValue(av types.AttributeValue) any {
	switch t := av.(type) {
	case *types.AttributeValueMemberS:
		return t.Value
	case *types.AttributeValueMemberN:
		return json.Number(t.Value)
	case *types.AttributeValueMemberBOOL:
		return t.Value
	case *types.AttributeValueMemberNULL:
		return nil
	case *types.AttributeValueMemberM:
		m := make(map[string]any, len(t.Value))
		for k, v := range t.Value {
			m[k] = fromAttributeValue(v)
		}
		return m
	case *types.AttributeValueMemberL:
		l := make([]any, 0, len(t.Value))
		for _, v := range t.Value {
			l = append(l, fromAttributeValue(v))
		}
		return l
	case *types.AttributeValueMemberSS:
		l := make([]any, 0, len(t.Value))
		for _, v := range t.Value {
			l = append(l, v)
		}
		return l
	default:
		return nil
	}
}

func fromAttributeValueMap(item map[string]types.AttributeValue) map[string]any {
	if item == nil {
		return nil
	}
	out := make(map[string]any, len(item))
	for k, v := range item {
		out[k] = fromAttributeValue(v)
	}
	return out
}

package repository

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/fjod/restaurant/internal/domain"
	"github.com/shopspring/decimal"
)

// updateExpression is a DynamoDB SET clause with its placeholder bindings.
type updateExpression struct {
	Update    string
	Condition string
	Names     map[string]string
	Values    map[string]types.AttributeValue
}

// buildUpdate renders set as "SET #nm = :nm, ..." in allow-list order. Attribute names reach
// DynamoDB only through ExpressionAttributeNames, so names that collide with reserved words
// (name, total, items, ...) are safe.
func buildUpdate(fam Family, set Document) (updateExpression, error) {
	expr := updateExpression{
		Condition: "attribute_exists(#" + keyPlaceholder + ")",
		Names:     map[string]string{"#" + keyPlaceholder: fam.Key},
		Values:    make(map[string]types.AttributeValue, len(set)),
	}

	clauses := make([]string, 0, len(set))
	for _, field := range fam.Fields {
		value, ok := set[field.Name]
		if !ok {
			continue
		}
		av, err := attributevalue.Marshal(toDynamo(value))
		if err != nil {
			return updateExpression{}, fmt.Errorf("marshal %s.%s: %w", fam.Name, field.Name, err)
		}
		name, placeholder := "#"+field.Placeholder, ":"+field.Placeholder
		expr.Names[name] = field.Name
		expr.Values[placeholder] = av
		clauses = append(clauses, name+" = "+placeholder)
	}
	if len(clauses) != len(set) {
		return updateExpression{}, fmt.Errorf("%w: %s update outside allow-list", domain.ErrUnknownField, fam.Name)
	}
	if len(clauses) == 0 {
		return updateExpression{}, domain.ErrEmptyUpdate
	}

	expr.Update = "SET " + strings.Join(clauses, ", ")
	return expr, nil
}

// toDynamo prepares a Document value for attributevalue.Marshal: decimals become exact
// Number attributes instead of float64.
func toDynamo(v any) any {
	switch t := v.(type) {
	case decimal.Decimal:
		return attributevalue.Number(t.String())
	case Document:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = toDynamo(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = toDynamo(val)
		}
		return out
	default:
		return v
	}
}

// fromDynamo maps values decoded with UseNumber back onto Document kinds.
func fromDynamo(v any) (any, error) {
	switch t := v.(type) {
	case attributevalue.Number:
		d, err := decimal.NewFromString(string(t))
		if err != nil {
			return nil, fmt.Errorf("number %q: %w", string(t), err)
		}
		return d, nil
	case map[string]any:
		out := make(Document, len(t))
		for k, val := range t {
			nv, err := fromDynamo(val)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", k, err)
			}
			out[k] = nv
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			nv, err := fromDynamo(val)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = nv
		}
		return out, nil
	default:
		return normalize(v)
	}
}

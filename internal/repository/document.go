package repository

import (
	"fmt"

	"github.com/fjod/restaurant/internal/domain"
	"github.com/fjod/restaurant/internal/money"
	"github.com/shopspring/decimal"
)

// Document is the backend-neutral shape of a stored record. After normalize, values are one
// of: nil, string, bool, int64, decimal.Decimal, Document, []any.
type Document map[string]any

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Document:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	default:
		return v
	}
}

// normalizeDocument folds driver- and caller-specific value types into Document kinds.
func normalizeDocument(m map[string]any) (Document, error) {
	out := make(Document, len(m))
	for k, v := range m {
		nv, err := normalize(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = nv
	}
	return out, nil
}

func normalize(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string, bool, int64, decimal.Decimal:
		return t, nil
	case *string:
		if t == nil {
			return nil, nil
		}
		return *t, nil
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case float32, float64:
		return money.Parse(t)
	case *decimal.Decimal:
		if t == nil {
			return nil, nil
		}
		return *t, nil
	case Document:
		return normalizeDocument(t)
	case map[string]any:
		return normalizeDocument(t)
	case []Document:
		out := make([]any, len(t))
		for i := range t {
			nv, err := normalizeDocument(t[i])
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = nv
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i := range t {
			nv, err := normalize(t[i])
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = nv
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unsupported value type %T", domain.ErrValidation, v)
	}
}

func getString(doc Document, field string) (string, error) {
	switch v := doc[field].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("field %q: expected string, got %T", field, v)
	}
}

func getOptionalString(doc Document, field string) (*string, error) {
	if doc[field] == nil {
		return nil, nil
	}
	s, err := getString(doc, field)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func getDecimal(doc Document, field string) (decimal.Decimal, error) {
	v, ok := doc[field]
	if !ok || v == nil {
		return decimal.Zero, nil
	}
	d, err := money.Parse(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("field %q: %w", field, err)
	}
	return d, nil
}

func getDocument(v any) (Document, error) {
	switch t := v.(type) {
	case Document:
		return t, nil
	case map[string]any:
		return Document(t), nil
	default:
		return nil, fmt.Errorf("expected document, got %T", v)
	}
}

package dashboard

import (
	"github.com/Veraticus/kitty/internal/model"
	"github.com/Veraticus/kitty/internal/source"
	"github.com/shopspring/decimal"
)

// decodeTotals accepts either a list of {groupId, total} rows or an object
// keyed by group ID.
func decodeTotals(raw any) (map[model.ID]decimal.Decimal, bool) {
	switch v := raw.(type) {
	case []any:
		out := make(map[model.ID]decimal.Decimal, len(v))
		for _, item := range v {
			row, ok := item.(map[string]any)
			if !ok {
				return nil, false
			}
			id, ok := rowID(row)
			if !ok {
				return nil, false
			}
			amount, ok := rowAmount(row)
			if !ok {
				return nil, false
			}
			out[id] = amount
		}
		return out, true

	case map[string]any:
		out := make(map[model.ID]decimal.Decimal, len(v))
		for k, val := range v {
			amount, ok := source.ToDecimal(val)
			if !ok {
				return nil, false
			}
			out[model.ID(k)] = amount
		}
		return out, true
	}
	return nil, false
}

func rowID(row map[string]any) (model.ID, bool) {
	for _, key := range []string{"groupId", "group_id", "id"} {
		raw, ok := row[key]
		if !ok {
			continue
		}
		var id model.ID
		if err := source.Convert(raw, &id); err != nil || id == "" {
			return "", false
		}
		return id, true
	}
	return "", false
}

func rowAmount(row map[string]any) (decimal.Decimal, bool) {
	for _, key := range []string{"total", "amount", "totalContributed"} {
		if raw, ok := row[key]; ok {
			return source.ToDecimal(raw)
		}
	}
	return decimal.Zero, false
}

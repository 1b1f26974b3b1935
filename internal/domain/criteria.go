package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Criterion is one equality condition of an attribute filter
type Criterion struct {
	Column string
	Value  any
}

// Criteria builds the conjunctive filter for a partially populated entity.
// Only fields that differ from their zero value take part; an entity with
// nothing set yields no criteria, which callers treat as "match nothing".
func Criteria(e Entity) []Criterion {
	var criteria []Criterion
	if id := e.Base().ID; id > 0 {
		criteria = append(criteria, Criterion{Column: "id", Value: id})
	}
	columns := e.Schema().Columns
	for i, v := range e.Values() {
		if IsDefault(v) {
			continue
		}
		criteria = append(criteria, Criterion{Column: columns[i], Value: v})
	}
	return criteria
}

// IsDefault reports whether v is the zero value of one of the column types used by entities
func IsDefault(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case int32:
		return val == 0
	case int:
		return val == 0
	case int64:
		return val == 0
	case bool:
		return !val
	case decimal.Decimal:
		return val.IsZero()
	case time.Time:
		return val.IsZero()
	case *time.Time:
		return val == nil || val.IsZero()
	case *string:
		return val == nil || *val == ""
	default:
		return false
	}
}

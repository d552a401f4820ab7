package metrics

import (
	"github.com/shopspring/decimal"

	"rafiqe/internal/ledger"
)

// Chart colors and placeholder values.
const (
	OverspentColor = "#ff3131"
	EmptyColor     = "#111"
	EmptyName      = "Empty"
)

// placeholderValue keeps funded but untouched buckets visible in a
// proportional chart.
var placeholderValue = decimal.RequireFromString("0.001")

// ChartSlice is one segment of the spending distribution.
type ChartSlice struct {
	BucketID string          `json:"bucket_id,omitempty"`
	Name     string          `json:"name"`
	Value    decimal.Decimal `json:"value"`
	Color    string          `json:"color"`
}

// ChartDistribution maps buckets to proportional chart values. Buckets with
// spending use it as their value, funded buckets with no spending get a
// negligible placeholder and everything else is dropped. The result is
// never empty.
func ChartDistribution(snap ledger.Snapshot) []ChartSlice {
	var out []ChartSlice
	for _, b := range BucketsWithSpending(snap) {
		var value decimal.Decimal
		switch {
		case b.Spent.IsPositive():
			value = b.Spent
		case b.Allocated.IsPositive():
			value = placeholderValue
		default:
			continue
		}

		color := b.Color
		if b.Overspent {
			color = OverspentColor
		}
		out = append(out, ChartSlice{BucketID: b.ID, Name: b.Name, Value: value, Color: color})
	}

	if len(out) == 0 {
		return []ChartSlice{{Name: EmptyName, Value: decimal.NewFromInt(1), Color: EmptyColor}}
	}
	return out
}

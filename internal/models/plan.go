package models

import "github.com/shopspring/decimal"

// PlanBucket is one entry of a proposed plan: a bucket template with the
// share of income it should receive.
type PlanBucket struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Icon    string          `json:"icon"`
	Percent decimal.Decimal `json:"percent"`
}

// BudgetPlan is a proposed split of income across buckets.
type BudgetPlan struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Buckets     []PlanBucket `json:"buckets"`
}

// PercentTotal returns the sum of the plan's bucket percents.
func (p BudgetPlan) PercentTotal() decimal.Decimal {
	total := decimal.Zero
	for _, b := range p.Buckets {
		total = total.Add(b.Percent)
	}
	return total
}

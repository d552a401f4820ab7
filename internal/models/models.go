// Package models holds the domain types shared by every layer of the budgeting service.
package models

import "github.com/shopspring/decimal"

func init() {
	// Amounts are rendered as JSON numbers rather than quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettingsID is the primary key of the only settings row.
const SettingsID = 1

// Settings is the persisted single-row record holding everything about the
// budget that is not a bucket or a transaction.
type Settings struct {
	ID       uint            `gorm:"primaryKey"`
	Version  int64           `gorm:"not null;default:0"`
	Income   decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	Currency string          `gorm:"size:3;not null"`
	Locale   string          `gorm:"size:2;not null"`
	Phase    string          `gorm:"size:32;not null"`
	Profile  UserProfile     `gorm:"embedded;embeddedPrefix:profile_"`
	Feedback string          `gorm:"type:text"`
	Plans    []BudgetPlan    `gorm:"serializer:json;type:text"`

	UpdatedAt time.Time
}

// TableName overrides the default table name.
func (Settings) TableName() string {
	return "ledger_settings"
}

package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "rafiqe/internal/errors"
	"rafiqe/internal/ledger"
	"rafiqe/internal/models"
	"rafiqe/internal/onboarding"
)

// GormRepository stores State in three tables: buckets, transactions and a
// single ledger_settings row. Every save replaces all rows in one database
// transaction.
type GormRepository struct {
	db *gorm.DB
}

var _ Repository = (*GormRepository)(nil)

// NewGormRepository creates a repository backed by db.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Load reads the saved state.
func (r *GormRepository) Load(ctx context.Context) (*State, error) {
	db := r.db.WithContext(ctx)

	var settings models.Settings
	if err := db.First(&settings, models.SettingsID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrNotFound, "no saved state")
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var buckets []models.Bucket
	if err := db.Order("position ASC").Find(&buckets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := db.Order("position ASC").Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	plans := settings.Plans
	if plans == nil {
		plans = []models.BudgetPlan{}
	}

	return &State{
		Ledger: ledger.Snapshot{
			Version:      uint64(settings.Version),
			Income:       settings.Income,
			Buckets:      buckets,
			Transactions: transactions,
		},
		Profile:  settings.Profile,
		Currency: settings.Currency,
		Locale:   models.Locale(settings.Locale),
		Phase:    resumablePhase(onboarding.Phase(settings.Phase), plans),
		Feedback: settings.Feedback,
		Plans:    plans,
	}, nil
}

// Save replaces the stored state with state.
func (r *GormRepository) Save(ctx context.Context, state State) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Transaction{}).Error; err != nil {
			return fmt.Errorf("clear transactions: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&models.Bucket{}).Error; err != nil {
			return fmt.Errorf("clear buckets: %w", err)
		}

		if len(state.Ledger.Buckets) > 0 {
			buckets := make([]models.Bucket, len(state.Ledger.Buckets))
			for i, b := range state.Ledger.Buckets {
				b.Position = i
				buckets[i] = b
			}
			if err := tx.CreateInBatches(buckets, 100).Error; err != nil {
				return fmt.Errorf("insert buckets: %w", err)
			}
		}

		if len(state.Ledger.Transactions) > 0 {
			transactions := make([]models.Transaction, len(state.Ledger.Transactions))
			for i, t := range state.Ledger.Transactions {
				t.Position = i
				transactions[i] = t
			}
			if err := tx.CreateInBatches(transactions, 100).Error; err != nil {
				return fmt.Errorf("insert transactions: %w", err)
			}
		}

		settings := models.Settings{
			ID:       models.SettingsID,
			Version:  int64(state.Ledger.Version),
			Income:   state.Ledger.Income,
			Currency: state.Currency,
			Locale:   string(state.Locale),
			Phase:    string(state.Phase),
			Profile:  state.Profile,
			Feedback: state.Feedback,
			Plans:    state.Plans,
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&settings).Error; err != nil {
			return fmt.Errorf("upsert settings: %w", err)
		}
		return nil
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

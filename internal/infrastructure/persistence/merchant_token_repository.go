package persistence

import (
	"context"
	"errors"

	"github.com/shipments/backend/internal/domain/merchant"
	"github.com/shipments/backend/internal/domain/shared"
	"github.com/shipments/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMerchantTokenRepository implements merchant.TokenRepository using GORM
type GormMerchantTokenRepository struct {
	db *gorm.DB
}

// NewGormMerchantTokenRepository creates a new GORM-based merchant token repository
func NewGormMerchantTokenRepository(db *gorm.DB) *GormMerchantTokenRepository {
	return &GormMerchantTokenRepository{db: db}
}

// Upsert stores the token for a merchant, replacing any existing one
func (r *GormMerchantTokenRepository) Upsert(ctx context.Context, token *merchant.Token) error {
	model := models.MerchantTokenModelFromDomain(token)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "merchant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"access_token", "refresh_token", "expires_at", "updated_at",
			}),
		}).
		Create(model).Error
}

// FindByMerchant retrieves the stored token for a merchant
func (r *GormMerchantTokenRepository) FindByMerchant(ctx context.Context, merchantID int64) (*merchant.Token, error) {
	var model models.MerchantTokenModel
	err := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Delete removes the stored token for a merchant. Missing rows are not an
// error: uninstall events may arrive for merchants that never authorized.
func (r *GormMerchantTokenRepository) Delete(ctx context.Context, merchantID int64) error {
	return r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Delete(&models.MerchantTokenModel{}).Error
}

package models

import (
	"time"

	"github.com/shipments/backend/internal/domain/merchant"
)

// MerchantTokenModel is the persistence mapping for merchant.Token.
// One row per merchant, replaced on re-authorization.
type MerchantTokenModel struct {
	MerchantID   int64  `gorm:"column:merchant_id;primaryKey"`
	AccessToken  string `gorm:"not null"`
	RefreshToken string `gorm:"not null"`
	ExpiresAt    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for MerchantTokenModel
func (MerchantTokenModel) TableName() string {
	return "merchant_tokens"
}

// ToDomain converts MerchantTokenModel to the domain entity
func (m *MerchantTokenModel) ToDomain() *merchant.Token {
	return &merchant.Token{
		MerchantID:   m.MerchantID,
		AccessToken:  m.AccessToken,
		RefreshToken: m.RefreshToken,
		ExpiresAt:    m.ExpiresAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// MerchantTokenModelFromDomain converts the domain entity to MerchantTokenModel
func MerchantTokenModelFromDomain(t *merchant.Token) *MerchantTokenModel {
	return &MerchantTokenModel{
		MerchantID:   t.MerchantID,
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresAt:    t.ExpiresAt,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shipments/backend/internal/domain/shared"
	"github.com/shipments/backend/internal/domain/shipment"
	"github.com/shipments/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormShipmentRepository implements shipment.Repository using GORM
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewGormShipmentRepository creates a new GORM-based shipment repository
func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// Create inserts a shipment only if no row with the same ID exists yet.
// Concurrent deliveries of the same webhook race on the insert; the loser
// gets shared.ErrAlreadyExists instead of a driver-specific conflict error.
func (r *GormShipmentRepository) Create(ctx context.Context, s *shipment.Shipment) error {
	model := models.ShipmentModelFromDomain(s)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "shipment_id"}},
			DoNothing: true,
		}).
		Create(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrAlreadyExists
	}
	return nil
}

// FindByID retrieves a shipment by its platform-assigned ID
func (r *GormShipmentRepository) FindByID(ctx context.Context, shipmentID int64) (*shipment.Shipment, error) {
	var model models.ShipmentModel
	err := r.db.WithContext(ctx).
		Where("shipment_id = ?", shipmentID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save overwrites all stored fields of an existing shipment
func (r *GormShipmentRepository) Save(ctx context.Context, s *shipment.Shipment) error {
	model := models.ShipmentModelFromDomain(s)
	result := r.db.WithContext(ctx).
		Model(&models.ShipmentModel{}).
		Where("shipment_id = ?", s.ShipmentID).
		Select("*").
		Omit("shipment_id").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a shipment and its status history
func (r *GormShipmentRepository) Delete(ctx context.Context, shipmentID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("shipment_id = ?", shipmentID).
			Delete(&models.ShipmentStatusModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("shipment_id = ?", shipmentID).
			Delete(&models.ShipmentModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// List retrieves shipments ordered by creation time, newest first
func (r *GormShipmentRepository) List(ctx context.Context, limit, offset int) ([]shipment.Shipment, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.ShipmentModel{}).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ShipmentModel
	query := r.db.WithContext(ctx).Order("created_at DESC, shipment_id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	shipments := make([]shipment.Shipment, len(rows))
	for i := range rows {
		shipments[i] = *rows[i].ToDomain()
	}
	return shipments, total, nil
}

// Search finds shipments whose shipping number or tracking number contains
// the query, case-insensitively
func (r *GormShipmentRepository) Search(ctx context.Context, query string) ([]shipment.Shipment, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	var rows []models.ShipmentModel
	err := r.db.WithContext(ctx).
		Where("LOWER(shipping_number) LIKE ? OR LOWER(tracking_number) LIKE ?", pattern, pattern).
		Order("created_at DESC, shipment_id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	shipments := make([]shipment.Shipment, len(rows))
	for i := range rows {
		shipments[i] = *rows[i].ToDomain()
	}
	return shipments, nil
}

// DeleteDuplicates removes shipments sharing a shipping number with a newer
// row, keeping the one with the highest shipment ID. Status history of the
// removed rows goes with them. Returns the number of shipments removed.
func (r *GormShipmentRepository) DeleteDuplicates(ctx context.Context) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			`DELETE FROM shipment_statuses WHERE shipment_id IN (
				SELECT shipment_id FROM shipments WHERE shipment_id NOT IN (
					SELECT MAX(shipment_id) FROM shipments GROUP BY shipping_number
				)
			)`).Error; err != nil {
			return err
		}
		result := tx.Exec(
			`DELETE FROM shipments WHERE shipment_id NOT IN (
				SELECT MAX(shipment_id) FROM shipments GROUP BY shipping_number
			)`)
		if result.Error != nil {
			return result.Error
		}
		removed = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// AppendStatus records a new status history entry for an existing shipment
func (r *GormShipmentRepository) AppendStatus(ctx context.Context, shipmentID int64, status shipment.Status) (*shipment.StatusEntry, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ShipmentModel{}).
		Where("shipment_id = ?", shipmentID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, shared.ErrNotFound
	}

	model := models.ShipmentStatusModel{
		ShipmentID: shipmentID,
		Status:     string(status),
		CreatedAt:  time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// LatestStatus returns the most recent status entry, or nil when the
// shipment has no history yet
func (r *GormShipmentRepository) LatestStatus(ctx context.Context, shipmentID int64) (*shipment.StatusEntry, error) {
	var model models.ShipmentStatusModel
	err := r.db.WithContext(ctx).
		Where("shipment_id = ?", shipmentID).
		Order("created_at DESC, id DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListStatuses returns the full status history in chronological order
func (r *GormShipmentRepository) ListStatuses(ctx context.Context, shipmentID int64) ([]shipment.StatusEntry, error) {
	var rows []models.ShipmentStatusModel
	err := r.db.WithContext(ctx).
		Where("shipment_id = ?", shipmentID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]shipment.StatusEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries, nil
}

package inventory

import (
	"database/sql"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	inventoryEntity "jewelstock.GO/model/entity/inventory"
)

type LotRepository struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

func NewLotRepository(db *gorm.DB) (*LotRepository, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return &LotRepository{db: db, sqlDB: sqlDB}, nil
}

func (r *LotRepository) FindByID(lotID uint) (*inventoryEntity.MaterialLot, error) {
	var lot inventoryEntity.MaterialLot
	if err := r.db.First(&lot, "lot_id = ?", lotID).Error; err != nil {
		return nil, err
	}
	return &lot, nil
}

func (r *LotRepository) FindByPurchaseID(purchaseID uint) (*inventoryEntity.MaterialLot, error) {
	var lot inventoryEntity.MaterialLot
	if err := r.db.First(&lot, "purchase_id = ?", purchaseID).Error; err != nil {
		return nil, err
	}
	return &lot, nil
}

// List returns lots ordered by ID with offset pagination.
func (r *LotRepository) List(limit, offset int) ([]inventoryEntity.MaterialLot, int64, error) {
	var total int64
	if err := r.db.Model(&inventoryEntity.MaterialLot{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var lots []inventoryEntity.MaterialLot
	err := r.db.Order("lot_id").Limit(limit).Offset(offset).Find(&lots).Error
	return lots, total, err
}

// LockForUpdate loads the given lots inside tx with row locks, ordered by
// lot_id ascending so concurrent callers acquire locks in the same order.
func (r *LotRepository) LockForUpdate(tx *gorm.DB, lotIDs []uint) ([]inventoryEntity.MaterialLot, error) {
	var lots []inventoryEntity.MaterialLot
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("lot_id IN ?", lotIDs).
		Order("lot_id").
		Find(&lots).Error
	return lots, err
}

// RemainingQuantity returns the stored remaining quantity for a lot.
// Uses raw SQL for minimal overhead on the hot read path.
func (r *LotRepository) RemainingQuantity(lotID uint) (int64, bool) {
	const query = `SELECT remaining_quantity FROM material_lot WHERE lot_id = ? LIMIT 1`
	var qty sql.NullInt64
	if err := r.sqlDB.QueryRow(query, lotID).Scan(&qty); err != nil || !qty.Valid {
		return 0, false
	}
	return qty.Int64, true
}

// FlaggedForReview returns lots carrying the manual-review flag.
func (r *LotRepository) FlaggedForReview() ([]inventoryEntity.MaterialLot, error) {
	var lots []inventoryEntity.MaterialLot
	err := r.db.Where("needs_review = ?", true).Order("lot_id").Find(&lots).Error
	return lots, err
}

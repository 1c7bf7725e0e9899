package inventory

import (
	"database/sql"

	"gorm.io/gorm"

	inventoryEntity "jewelstock.GO/model/entity/inventory"
)

type LedgerRepository struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

func NewLedgerRepository(db *gorm.DB) (*LedgerRepository, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return &LedgerRepository{db: db, sqlDB: sqlDB}, nil
}

// EntriesByLot returns all ledger entries for a lot in sequence order.
func (r *LedgerRepository) EntriesByLot(lotID uint) ([]inventoryEntity.UsageEntry, error) {
	var entries []inventoryEntity.UsageEntry
	err := r.db.Where("lot_id = ?", lotID).Order("seq").Find(&entries).Error
	return entries, err
}

// NetSum returns the signed sum of all entries for a lot.
func (r *LedgerRepository) NetSum(lotID uint) (int64, error) {
	const query = `SELECT COALESCE(SUM(quantity), 0) FROM usage_entry WHERE lot_id = ?`
	var total int64
	err := r.sqlDB.QueryRow(query, lotID).Scan(&total)
	return total, err
}

// NetSumsByLot fetches signed ledger sums for every lot in one query.
func (r *LedgerRepository) NetSumsByLot() (map[uint]int64, error) {
	result := make(map[uint]int64)
	rows, err := r.db.Table("usage_entry").
		Select("lot_id, COALESCE(SUM(quantity), 0) AS net").
		Group("lot_id").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var lotID uint
		var net int64
		if err := rows.Scan(&lotID, &net); err != nil {
			// A dropped row would read as ledger-sum 0 and let repair
			// mode rewrite a healthy lot. Fail the whole scan instead.
			return nil, err
		}
		result[lotID] = net
	}
	return result, rows.Err()
}

// NetConsumed returns consumed minus returned for one lot-SKU pair.
// This bounds how much a destroy-and-return may credit back.
func (r *LedgerRepository) NetConsumed(lotID, skuID uint) (int64, error) {
	const query = `SELECT COALESCE(SUM(quantity), 0) FROM usage_entry WHERE lot_id = ? AND sku_id = ?`
	var net int64
	err := r.sqlDB.QueryRow(query, lotID, skuID).Scan(&net)
	return net, err
}

// FirstAssemblyEntries returns, per lot, the chronologically first positive
// entry linking that lot to the SKU. Order within a lot follows the per-lot
// sequence, not insertion luck.
func (r *LedgerRepository) FirstAssemblyEntries(skuID uint) ([]inventoryEntity.UsageEntry, error) {
	var entries []inventoryEntity.UsageEntry
	err := r.db.Where("sku_id = ? AND quantity > 0", skuID).
		Order("lot_id, seq").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	firsts := entries[:0]
	var lastLot uint
	for _, e := range entries {
		if len(firsts) > 0 && e.LotID == lastLot {
			continue
		}
		firsts = append(firsts, e)
		lastLot = e.LotID
	}
	return firsts, nil
}

// NextSeq allocates the next per-lot sequence number. Callers must hold the
// lot row lock so two writers cannot observe the same maximum.
func (r *LedgerRepository) NextSeq(tx *gorm.DB, lotID uint) (int64, error) {
	var max sql.NullInt64
	err := tx.Table("usage_entry").
		Select("MAX(seq)").
		Where("lot_id = ?", lotID).
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max.Int64 + 1, nil
}

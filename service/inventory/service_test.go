package inventory_test

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"jewelstock.GO/core/cache"
	inventoryEntity "jewelstock.GO/model/entity/inventory"
	purchaseEntity "jewelstock.GO/model/entity/purchase"
	skuEntity "jewelstock.GO/model/entity/sku"
	inventoryService "jewelstock.GO/service/inventory"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Temp file DB so goroutine connections in concurrency tests share tables
	tmpFile := filepath.Join(t.TempDir(), "inventory_test.db")
	db, err := gorm.Open(sqlite.Open(tmpFile), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	if err := db.AutoMigrate(
		&purchaseEntity.PurchaseRecord{},
		&inventoryEntity.MaterialLot{},
		&inventoryEntity.UsageEntry{},
		&inventoryEntity.LotCorrection{},
		&skuEntity.SKU{},
		&skuEntity.RecipeItem{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	// Recipe results are cached process-wide; isolate tests from each other
	cache.GetInstance().Flush()
	return db
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func i64Ptr(v int64) *int64 {
	return &v
}

func seedPurchase(t *testing.T, db *gorm.DB, rec *purchaseEntity.PurchaseRecord) *purchaseEntity.PurchaseRecord {
	t.Helper()
	if err := db.Create(rec).Error; err != nil {
		t.Fatalf("seed purchase: %v", err)
	}
	return rec
}

// seedLot derives a lot from a fresh purchase with the given piece count and
// total price.
func seedLot(t *testing.T, db *gorm.DB, pieces int64, totalPrice string) *inventoryEntity.MaterialLot {
	t.Helper()
	rec := seedPurchase(t, db, &purchaseEntity.PurchaseRecord{
		MaterialType: purchaseEntity.MaterialLooseBeads,
		Quality:      "AA",
		PieceCount:   i64Ptr(pieces),
		TotalPrice:   decPtr(totalPrice),
	})
	res, err := inventoryService.DeriveLot(db, rec)
	if err != nil {
		t.Fatalf("derive lot: %v", err)
	}
	return res.Lot
}

func seedSKU(t *testing.T, db *gorm.DB, code string) *skuEntity.SKU {
	t.Helper()
	s := &skuEntity.SKU{Code: code, Name: "Test " + code}
	if err := db.Create(s).Error; err != nil {
		t.Fatalf("seed sku: %v", err)
	}
	return s
}

func lotByID(t *testing.T, db *gorm.DB, lotID uint) *inventoryEntity.MaterialLot {
	t.Helper()
	var lot inventoryEntity.MaterialLot
	if err := db.First(&lot, "lot_id = ?", lotID).Error; err != nil {
		t.Fatalf("load lot %d: %v", lotID, err)
	}
	return &lot
}

func skuByID(t *testing.T, db *gorm.DB, skuID uint) *skuEntity.SKU {
	t.Helper()
	var s skuEntity.SKU
	if err := db.First(&s, "sku_id = ?", skuID).Error; err != nil {
		t.Fatalf("load sku %d: %v", skuID, err)
	}
	return &s
}

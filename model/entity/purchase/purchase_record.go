package purchase

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaterialType tags a purchase with the kind of raw material acquired.
// It decides which quantity field is authoritative when the lot is derived.
type MaterialType string

const (
	MaterialLooseBeads  MaterialType = "LOOSE_BEADS"
	MaterialBracelet    MaterialType = "BRACELET"
	MaterialAccessories MaterialType = "ACCESSORIES"
	MaterialFinished    MaterialType = "FINISHED"
)

func (t MaterialType) Valid() bool {
	switch t {
	case MaterialLooseBeads, MaterialBracelet, MaterialAccessories, MaterialFinished:
		return true
	}
	return false
}

// PurchaseRecord represents purchase_record: one acquisition of raw material.
// Exactly one quantity field is authoritative per material type; the rest
// stay null or carry supplier-sheet extras (weight for loose beads etc).
type PurchaseRecord struct {
	PurchaseID    uint             `gorm:"column:purchase_id;primaryKey;autoIncrement" json:"purchase_id"`
	MaterialType  MaterialType     `gorm:"column:material_type;type:varchar(32);not null" json:"material_type"`
	Quality       string           `gorm:"column:quality;type:varchar(32)" json:"quality"`
	Specification string           `gorm:"column:specification;type:varchar(64)" json:"specification"`
	TotalPrice    *decimal.Decimal `gorm:"column:total_price;type:decimal(12,2)" json:"total_price"`
	PricePerBead  *decimal.Decimal `gorm:"column:price_per_bead;type:decimal(12,4)" json:"price_per_bead"`
	PricePerPiece *decimal.Decimal `gorm:"column:price_per_piece;type:decimal(12,4)" json:"price_per_piece"`
	PricePerGram  *decimal.Decimal `gorm:"column:price_per_gram;type:decimal(12,4)" json:"price_per_gram"`
	PieceCount    *int64           `gorm:"column:piece_count" json:"piece_count"`
	TotalBeads    *int64           `gorm:"column:total_beads" json:"total_beads"`
	WeightGrams   *decimal.Decimal `gorm:"column:weight_grams;type:decimal(12,2)" json:"weight_grams"`
	SupplierID    *uint            `gorm:"column:supplier_id;index" json:"supplier_id"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (PurchaseRecord) TableName() string {
	return "purchase_record"
}

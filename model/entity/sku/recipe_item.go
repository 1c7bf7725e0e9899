package sku

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecipeItem stores the per-unit material requirement of a SKU, captured
// once at first assembly. Later consumption and returns never change it;
// recomputing a recipe from the cumulative ledger conflates batches.
type RecipeItem struct {
	RecipeItemID    uint             `gorm:"column:recipe_item_id;primaryKey;autoIncrement" json:"recipe_item_id"`
	SkuID           uint             `gorm:"column:sku_id;not null;uniqueIndex:idx_recipe_sku_lot,priority:1" json:"sku_id"`
	LotID           uint             `gorm:"column:lot_id;not null;uniqueIndex:idx_recipe_sku_lot,priority:2" json:"lot_id"`
	PerUnitQuantity decimal.Decimal  `gorm:"column:per_unit_quantity;type:decimal(12,4);not null" json:"per_unit_quantity"`
	UnitCost        *decimal.Decimal `gorm:"column:unit_cost;type:decimal(12,4)" json:"unit_cost"`
	NeedsReview     bool             `gorm:"column:needs_review;not null;default:false" json:"needs_review"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (RecipeItem) TableName() string {
	return "sku_recipe_item"
}

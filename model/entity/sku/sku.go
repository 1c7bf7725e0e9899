package sku

import (
	"time"

	"github.com/shopspring/decimal"
)

// SKU is an assembled product. TotalProduced is cumulative across assembly
// batches; Available drops on destroy (with or without return to stock).
type SKU struct {
	SkuID         uint            `gorm:"column:sku_id;primaryKey;autoIncrement" json:"sku_id"`
	Code          string          `gorm:"column:code;type:varchar(64);uniqueIndex" json:"code"`
	Name          string          `gorm:"column:name;type:varchar(255)" json:"name"`
	TotalProduced int64           `gorm:"column:total_produced;not null;default:0" json:"total_produced"`
	Available     int64           `gorm:"column:available;not null;default:0" json:"available"`
	MaterialCost  decimal.Decimal `gorm:"column:material_cost;type:decimal(12,2);not null;default:0" json:"material_cost"`
	LaborCost     decimal.Decimal `gorm:"column:labor_cost;type:decimal(12,2);not null;default:0" json:"labor_cost"`
	CraftCost     decimal.Decimal `gorm:"column:craft_cost;type:decimal(12,2);not null;default:0" json:"craft_cost"`
	TotalCost     decimal.Decimal `gorm:"column:total_cost;type:decimal(12,2);not null;default:0" json:"total_cost"`
	SellingPrice  decimal.Decimal `gorm:"column:selling_price;type:decimal(12,2);not null;default:0" json:"selling_price"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (SKU) TableName() string {
	return "sku"
}

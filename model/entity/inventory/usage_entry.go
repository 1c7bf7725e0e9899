package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// UsageEntry is one row of the append-only usage ledger. Positive quantity
// is consumption at assembly time, negative is a destroy-and-return credit.
// Rows are never updated; corrections append offsetting rows.
//
// Seq is a per-lot monotonic sequence assigned under the lot row lock, so
// "first entry per lot" is well defined regardless of storage ordering.
type UsageEntry struct {
	EntryID       uint             `gorm:"column:entry_id;primaryKey;autoIncrement" json:"entry_id"`
	LotID         uint             `gorm:"column:lot_id;not null;index:idx_usage_lot_seq,priority:1" json:"lot_id"`
	SkuID         uint             `gorm:"column:sku_id;not null;index" json:"sku_id"`
	Seq           int64            `gorm:"column:seq;not null;index:idx_usage_lot_seq,priority:2" json:"seq"`
	Quantity      int64            `gorm:"column:quantity;not null" json:"quantity"`
	BatchProduced int64            `gorm:"column:batch_produced;not null;default:0" json:"batch_produced"`
	UnitCost      *decimal.Decimal `gorm:"column:unit_cost;type:decimal(12,4)" json:"unit_cost"`
	TotalCost     *decimal.Decimal `gorm:"column:total_cost;type:decimal(12,2)" json:"total_cost"`
	CorrelationID string           `gorm:"column:correlation_id;size:36;index" json:"correlation_id"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (UsageEntry) TableName() string {
	return "usage_entry"
}

// IsReversal reports whether the entry credits material back to the lot.
func (e UsageEntry) IsReversal() bool {
	return e.Quantity < 0
}

package sku

import (
	"gorm.io/gorm"

	skuEntity "jewelstock.GO/model/entity/sku"
)

type SkuRepository struct {
	db *gorm.DB
}

func NewSkuRepository(db *gorm.DB) *SkuRepository {
	return &SkuRepository{db: db}
}

func (r *SkuRepository) Create(s *skuEntity.SKU) error {
	return r.db.Create(s).Error
}

func (r *SkuRepository) FindByID(skuID uint) (*skuEntity.SKU, error) {
	var s skuEntity.SKU
	if err := r.db.First(&s, "sku_id = ?", skuID).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SkuRepository) FindByCode(code string) (*skuEntity.SKU, error) {
	var s skuEntity.SKU
	if err := r.db.First(&s, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// RecipeItems returns the persisted recipe rows for a SKU, if any.
func (r *SkuRepository) RecipeItems(skuID uint) ([]skuEntity.RecipeItem, error) {
	var items []skuEntity.RecipeItem
	err := r.db.Where("sku_id = ?", skuID).Order("lot_id").Find(&items).Error
	return items, err
}

func (r *SkuRepository) HasRecipe(skuID uint) (bool, error) {
	var count int64
	err := r.db.Model(&skuEntity.RecipeItem{}).Where("sku_id = ?", skuID).Count(&count).Error
	return count > 0, err
}

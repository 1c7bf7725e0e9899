package models

import graphql "github.com/graph-gophers/graphql-go"

// MaterialLot is the GraphQL projection of a material lot.
type MaterialLot struct {
	LotID             graphql.ID
	PurchaseID        graphql.ID
	OriginalQuantity  int32
	UsedQuantity      int32
	RemainingQuantity int32
	UnitCost          *float64
	TotalCost         *float64
	NeedsReview       bool
	ReviewReason      *string
}

// LotPage is a paginated lot result.
type LotPage struct {
	Items       []*MaterialLot
	Total       int32
	CurrentPage int32
	PageSize    int32
}

// Recipe is the GraphQL projection of a SKU's per-unit requirements.
type Recipe struct {
	SkuID               graphql.ID
	PerUnitMaterialCost float64
	Reconstructed       bool
	Lines               []*RecipeLine
}

// RecipeLine is one material line of a recipe.
type RecipeLine struct {
	LotID           graphql.ID
	PerUnitQuantity float64
	UnitCost        *float64
	PerUnitCost     *float64
	NeedsReview     bool
}

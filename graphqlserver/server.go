package graphqlserver

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	gql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"gorm.io/gorm"

	"jewelstock.GO/graphql"
	gqlmodels "jewelstock.GO/graphql/models"
	inventoryEntity "jewelstock.GO/model/entity/inventory"
	inventoryRepo "jewelstock.GO/model/repository/inventory"
	inventoryService "jewelstock.GO/service/inventory"
)

// RootResolver is the root for graphql-go.
type RootResolver struct {
	DB *gorm.DB
}

func parseID(id gql.ID) (uint, error) {
	n, err := strconv.ParseUint(string(id), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", string(id))
	}
	return uint(n), nil
}

func mapLot(l *inventoryEntity.MaterialLot) *gqlmodels.MaterialLot {
	out := &gqlmodels.MaterialLot{
		LotID:             gql.ID(strconv.FormatUint(uint64(l.LotID), 10)),
		PurchaseID:        gql.ID(strconv.FormatUint(uint64(l.PurchaseID), 10)),
		OriginalQuantity:  int32(l.OriginalQuantity),
		UsedQuantity:      int32(l.UsedQuantity),
		RemainingQuantity: int32(l.RemainingQuantity),
		NeedsReview:       l.NeedsReview,
	}
	if l.UnitCost != nil {
		f, _ := l.UnitCost.Float64()
		out.UnitCost = &f
	}
	if l.TotalCost != nil {
		f, _ := l.TotalCost.Float64()
		out.TotalCost = &f
	}
	if l.ReviewReason != "" {
		reason := l.ReviewReason
		out.ReviewReason = &reason
	}
	return out
}

// MaterialLotArgs matches the materialLot query arguments.
type MaterialLotArgs struct {
	ID gql.ID
}

func (r *RootResolver) MaterialLot(ctx context.Context, args MaterialLotArgs) (*gqlmodels.MaterialLot, error) {
	id, err := parseID(args.ID)
	if err != nil {
		return nil, err
	}
	repo, err := inventoryRepo.NewLotRepository(r.DB)
	if err != nil {
		return nil, err
	}
	l, err := repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return mapLot(l), nil
}

// MaterialLotsArgs matches the materialLots query arguments (defaults in schema).
type MaterialLotsArgs struct {
	PageSize    int32
	CurrentPage int32
}

func (r *RootResolver) MaterialLots(ctx context.Context, args MaterialLotsArgs) (*gqlmodels.LotPage, error) {
	ps, cp := int(args.PageSize), int(args.CurrentPage)
	if ps <= 0 {
		ps = 20
	}
	if cp <= 0 {
		cp = 1
	}

	repo, err := inventoryRepo.NewLotRepository(r.DB)
	if err != nil {
		return nil, err
	}
	lots, total, err := repo.List(ps, (cp-1)*ps)
	if err != nil {
		return nil, err
	}
	page := &gqlmodels.LotPage{
		Items:       make([]*gqlmodels.MaterialLot, len(lots)),
		Total:       int32(total),
		CurrentPage: int32(cp),
		PageSize:    int32(ps),
	}
	for i := range lots {
		page.Items[i] = mapLot(&lots[i])
	}
	return page, nil
}

// RecipeArgs matches the recipe query arguments.
type RecipeArgs struct {
	SkuID gql.ID
}

func (r *RootResolver) Recipe(ctx context.Context, args RecipeArgs) (*gqlmodels.Recipe, error) {
	id, err := parseID(args.SkuID)
	if err != nil {
		return nil, err
	}
	res, err := inventoryService.Recipe(r.DB, id)
	if err != nil {
		return nil, err
	}

	out := &gqlmodels.Recipe{
		SkuID:         args.SkuID,
		Reconstructed: res.Reconstructed,
		Lines:         make([]*gqlmodels.RecipeLine, len(res.Lines)),
	}
	out.PerUnitMaterialCost, _ = res.PerUnitMaterialCost.Float64()
	for i, line := range res.Lines {
		gl := &gqlmodels.RecipeLine{
			LotID:       gql.ID(strconv.FormatUint(uint64(line.LotID), 10)),
			NeedsReview: line.NeedsReview,
		}
		gl.PerUnitQuantity, _ = line.PerUnitQuantity.Float64()
		if line.UnitCost != nil {
			f, _ := line.UnitCost.Float64()
			gl.UnitCost = &f
		}
		if line.PerUnitCost != nil {
			f, _ := line.PerUnitCost.Float64()
			gl.PerUnitCost = &f
		}
		out.Lines[i] = gl
	}
	return out, nil
}

// NewSchema parses the schema and returns a graphql-go Schema.
func NewSchema(db *gorm.DB) (*gql.Schema, error) {
	return gql.ParseSchema(graphql.Schema(), &RootResolver{DB: db}, gql.UseFieldResolvers())
}

// Handler returns an http.Handler for GraphQL (relay format).
func Handler(schema *gql.Schema) *relay.Handler {
	return &relay.Handler{Schema: schema}
}

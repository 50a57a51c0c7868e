package logic

import (
	"context"
	"fmt"
	"math"

	"github.com/zeromicro/go-zero/core/logx"

	"fujiscan-api/internal/svc"
	"fujiscan-api/internal/types"
	"fujiscan-api/pkg/funding"
	"fujiscan-api/pkg/valuecontext"
)

const maxContextItems = 5

type ValueLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewValueLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ValueLogic {
	return &ValueLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ValueLogic) Costs() (*types.CostsResponse, error) {
	items := l.svcCtx.Catalog.Items()
	seen := make(map[valuecontext.Category]bool)
	cats := make([]valuecontext.Category, 0)
	for _, it := range items {
		if it.Category != "" && !seen[it.Category] {
			seen[it.Category] = true
			cats = append(cats, it.Category)
		}
	}
	return &types.CostsResponse{Items: items, Categories: cats}, nil
}

// UpsertCost edits a catalog entry or adds a new one. Entries written here are
// always editable.
func (l *ValueLogic) UpsertCost(req *types.UpsertCostRequest) (*types.CostsResponse, error) {
	item := valuecontext.CostItem{
		ID:       req.ID,
		Label:    req.Label,
		USD:      req.USD,
		Category: valuecontext.Category(req.Category),
		Editable: true,
	}
	if err := l.svcCtx.Catalog.Upsert(item); err != nil {
		return nil, BadRequest(err)
	}
	l.Infof("value: cost %s set to %s", item.ID, valuecontext.FormatUSD(item.USD))
	return l.Costs()
}

func (l *ValueLogic) RemoveCost(req *types.RemoveCostRequest) (*types.CostsResponse, error) {
	if !l.svcCtx.Catalog.Remove(req.ID) {
		return nil, fmt.Errorf("cost %q: %w", req.ID, ErrNotFound)
	}
	l.Infof("value: cost %s removed", req.ID)
	return l.Costs()
}

// Context picks the comparison anchors for an amount and renders them.
func (l *ValueLogic) Context(req *types.ValueContextRequest) (*types.ValueContextResponse, error) {
	if !finite(req.Amount) {
		return nil, badRequestf("amount must be a finite number")
	}
	var cats []valuecontext.Category
	for _, raw := range funding.ParseList(req.Categories) {
		c, ok := valuecontext.ParseCategory(raw)
		if !ok {
			return nil, badRequestf("unknown category %q", raw)
		}
		cats = append(cats, c)
	}
	mode, ok := valuecontext.ParseSortMode(req.Sort)
	if !ok {
		return nil, badRequestf("unknown sort %q", req.Sort)
	}
	limit := req.Limit
	if limit <= 0 || limit > maxContextItems {
		limit = maxContextItems
	}

	resp := &types.ValueContextResponse{
		Amount:      req.Amount,
		AmountText:  valuecontext.FormatUSD(req.Amount),
		Items:       []types.ContextItem{},
		Comparisons: []types.ContextItem{},
	}
	if req.Amount == 0 {
		return resp, nil
	}

	filters := valuecontext.ParseFilters(req.Filters)
	pool := l.svcCtx.Catalog.InCategories(cats...)
	picked := valuecontext.SelectSmartContextItems(pool, req.Amount, valuecontext.ContextPredicate(filters))
	if len(picked) > limit {
		picked = picked[:limit]
	}

	for _, it := range picked {
		resp.Items = append(resp.Items, contextItem(valuecontext.Compare(req.Amount, it)))
	}
	for _, cmp := range valuecontext.ComputeComparisons(req.Amount, pool, mode, filters) {
		resp.Comparisons = append(resp.Comparisons, contextItem(cmp))
	}
	ranked := valuecontext.ComputeComparisons(req.Amount, picked, valuecontext.SortAmount, nil)
	resp.Summary = valuecontext.OneLineSummary(req.Amount, ranked)
	resp.WageLine = valuecontext.WageLine(req.Amount, l.svcCtx.Wages)
	return resp, nil
}

// Wages converts an amount into working time per region. FX overrides rebuild
// the EU and JP presets from their local-currency bases.
func (l *ValueLogic) Wages(req *types.WagesRequest) (*types.WagesResponse, error) {
	if !finite(req.Amount) {
		return nil, badRequestf("amount must be a finite number")
	}
	presets := l.svcCtx.Wages
	if req.FxEurUsd != 0 || req.FxJpyUsd != 0 {
		if req.FxEurUsd < 0 || req.FxJpyUsd < 0 {
			return nil, badRequestf("fx rates must be positive")
		}
		presets = valuecontext.RecalculateWithFX(presets, req.FxEurUsd, req.FxJpyUsd)
	}

	regions := valuecontext.Regions
	if req.Region != "" {
		r, ok := valuecontext.ParseRegion(req.Region)
		if !ok {
			return nil, badRequestf("unknown region %q", req.Region)
		}
		regions = []valuecontext.Region{r}
	}

	resp := &types.WagesResponse{Amount: req.Amount, Items: []types.WageEquivalent{}}
	selected := make(valuecontext.WagePresets, len(regions))
	for _, r := range regions {
		p, ok := presets[r]
		if !ok {
			continue
		}
		selected[r] = p
		eq := valuecontext.WageEquivalents(req.Amount, p)
		unit, v := eq.DisplayUnit()
		resp.Items = append(resp.Items, types.WageEquivalent{
			Region:      r,
			Preset:      p,
			Equivalents: eq,
			Unit:        unit,
			Value:       v,
			Text:        eq.String(),
		})
	}
	resp.Line = valuecontext.WageLine(req.Amount, selected)
	return resp, nil
}

func contextItem(cmp valuecontext.Comparison) types.ContextItem {
	return types.ContextItem{
		Comparison:   cmp,
		MultipleText: valuecontext.FormatMultiple(cmp.Multiple),
		PriceText:    valuecontext.FormatUSD(cmp.Item.USD),
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

package logic

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"fujiscan-api/internal/svc"
	"fujiscan-api/internal/types"
	"fujiscan-api/pkg/funding"
	"fujiscan-api/pkg/rates"
)

type FundingLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
	now    func() time.Time
}

func NewFundingLogic(ctx context.Context, svcCtx *svc.ServiceContext) *FundingLogic {
	return &FundingLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
		now:    time.Now,
	}
}

// Funding aggregates tickers for the selection, then applies the optional APR
// mode, quick filters and sort. Without sort the venue order is kept.
func (l *FundingLogic) Funding(req *types.FundingRequest) (*types.FundingResponse, error) {
	mode, err := rates.ParseMode(req.Mode)
	if err != nil {
		return nil, BadRequest(err)
	}

	resp, err := l.svcCtx.Aggregator.GetAggregatedFunding(l.ctx,
		funding.SelectionList(req.Assets, req.HasAssets),
		funding.SelectionList(req.Exchanges, req.HasExchanges))
	if err != nil {
		return nil, err
	}

	if mode != rates.Simple {
		for i := range resp.Data {
			resp.Data[i].APRSigned = resp.Data[i].APR(mode)
		}
	}
	now := l.now()
	data := funding.FilterTickers(resp.Data, funding.QuickFilters{
		NegativesOnly: req.NegativesOnly,
		NextUnder1h:   req.NextUnder1h,
	}, now)
	if req.Sort != "" {
		funding.SortTickers(data, funding.ParseSortMode(req.Sort))
	}

	if resp.Meta.Stale {
		l.Infof("funding: %d of %d venues failed", resp.Meta.FailedExchanges, len(resp.Meta.Exchanges))
	}

	rows := make([]types.FundingRow, 0, len(data))
	for _, t := range data {
		row := types.FundingRow{
			Ticker:  t,
			APRText: rates.FormatAPR(t.APRSigned),
			Tone:    rates.ToneOf(t.APRSigned),
		}
		if d, ok := funding.TimeUntilNextFunding(t, now); ok {
			row.NextIn = funding.FormatTimeRemaining(d)
		}
		rows = append(rows, row)
	}
	return &types.FundingResponse{Data: rows, Meta: resp.Meta}, nil
}

type SignalsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
	now    func() time.Time
}

func NewSignalsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *SignalsLogic {
	return &SignalsLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
		now:    time.Now,
	}
}

func (l *SignalsLogic) Signals(req *types.SignalsRequest) (*types.SignalsResponse, error) {
	resp, err := l.svcCtx.Aggregator.GetAggregatedFunding(l.ctx,
		funding.SelectionList(req.Assets, req.HasAssets),
		funding.SelectionList(req.Exchanges, req.HasExchanges))
	if err != nil {
		return nil, err
	}
	out := &types.SignalsResponse{
		Signals: funding.ComputeSignals(resp.Data, l.now()),
		Meta:    resp.Meta,
	}
	if t := out.TopPositive; t != nil {
		out.TopPositiveAPR = rates.FormatAPR(t.APRSigned)
	}
	if t := out.TopNegative; t != nil {
		out.TopNegativeAPR = rates.FormatAPR(t.APRSigned)
	}
	return out, nil
}

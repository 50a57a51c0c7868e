package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"fujiscan-api/internal/cache"
	"fujiscan-api/internal/logic"
	"fujiscan-api/internal/svc"
	"fujiscan-api/internal/types"
)

func FundingHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.FundingRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, logic.BadRequest(err))
			return
		}
		q := r.URL.Query()
		req.HasAssets, req.HasExchanges = q.Has("assets"), q.Has("exchanges")

		l := logic.NewFundingLogic(r.Context(), svcCtx)
		resp, err := l.Funding(&req)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}
		w.Header().Set("Cache-Control", cache.FundingCacheControl(svcCtx.TTL))
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}

func SignalsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.SignalsRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, logic.BadRequest(err))
			return
		}
		q := r.URL.Query()
		req.HasAssets, req.HasExchanges = q.Has("assets"), q.Has("exchanges")

		l := logic.NewSignalsLogic(r.Context(), svcCtx)
		resp, err := l.Signals(&req)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}

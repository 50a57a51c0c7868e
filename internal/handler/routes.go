package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest"

	"fujiscan-api/internal/svc"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodGet,
				Path:    "/funding",
				Handler: FundingHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/funding/signals",
				Handler: SignalsHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/value/costs",
				Handler: CostsHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/value/costs",
				Handler: UpsertCostHandler(serverCtx),
			},
			{
				Method:  http.MethodDelete,
				Path:    "/value/costs/:id",
				Handler: RemoveCostHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/value/context",
				Handler: ValueContextHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/value/wages",
				Handler: WagesHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/healthz",
				Handler: HealthHandler(serverCtx),
			},
		},
		rest.WithPrefix("/api"),
	)
}

package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/zeromicro/go-zero/core/logx"

	"fujiscan-api/internal/logic"
	"fujiscan-api/pkg/funding"
)

type errorBody struct {
	Error string `json:"error"`
}

// ErrorHandler maps logic errors onto the public error shape. Install it with
// httpx.SetErrorHandlerCtx.
func ErrorHandler(ctx context.Context, err error) (int, any) {
	switch {
	case errors.Is(err, funding.ErrInvalidSelection):
		return http.StatusBadRequest, errorBody{Error: "Invalid assets or exchanges"}
	case errors.Is(err, logic.ErrBadRequest):
		return http.StatusBadRequest, errorBody{Error: err.Error()}
	case errors.Is(err, logic.ErrNotFound):
		return http.StatusNotFound, errorBody{Error: err.Error()}
	default:
		logx.WithContext(ctx).Errorf("request failed: %v", err)
		return http.StatusInternalServerError, errorBody{Error: "Internal server error"}
	}
}

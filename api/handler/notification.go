package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskpulse/backend/pkg/httpcontext"
	notifyUC "github.com/taskpulse/backend/usecase/notify"
)

type NotificationHandler struct {
	baseHandler
	uc *notifyUC.UseCase
}

func NewNotificationHandler(uc *notifyUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List notification audit records
// @Tags notifications
// @Router /api/v1/notifications [get]
func (h *NotificationHandler) GetNotifications(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	limit := parseInt(string(ctx.QueryArgs().Peek("limit")), 50)
	offset := parseInt(string(ctx.QueryArgs().Peek("offset")), 0)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	records, err := h.uc.ListNotifications(stdCtx, userID, limit, offset)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, records)
}

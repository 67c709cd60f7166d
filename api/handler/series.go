package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskpulse/backend/api/transport"
	"github.com/taskpulse/backend/domain"
	"github.com/taskpulse/backend/pkg/httpcontext"
	seriesUC "github.com/taskpulse/backend/usecase/series"
)

type SeriesHandler struct {
	baseHandler
	uc *seriesUC.UseCase
}

func NewSeriesHandler(uc *seriesUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *SeriesHandler {
	return &SeriesHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List series
// @Tags series
// @Router /api/v1/series [get]
func (h *SeriesHandler) GetSeries(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	series, err := h.uc.ListSeries(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, series)
}

// @Summary Get series
// @Tags series
// @Router /api/v1/series/{id} [get]
func (h *SeriesHandler) GetSeriesByID(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing series id", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	series, err := h.uc.GetSeries(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if series.UserID != userID {
		h.respondError(ctx, domain.ErrSeriesNotFound)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, series)
}

// @Summary Create series with first occurrence
// @Tags series
// @Router /api/v1/series [post]
func (h *SeriesHandler) CreateSeries(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.SeriesRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	series := &domain.TaskSeries{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Pattern:     patternFromRequest(req.Pattern),
	}
	first := seriesUC.FirstOccurrence{
		DueDate:      parseTime(req.DueDate),
		ReminderTime: parseTime(req.ReminderTime),
		Priority:     req.Priority,
		Tags:         req.Tags,
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, task, err := h.uc.CreateSeries(stdCtx, series, first)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, transport.SeriesCreateResponse{
		Series: created,
		Task:   task,
	})
}

// @Summary Update series pattern
// @Tags series
// @Router /api/v1/series/{id}/pattern [put]
func (h *SeriesHandler) UpdatePattern(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing series id", nil))
		return
	}

	var req transport.PatternRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.ensureOwner(stdCtx, ctx, id, userID); err != nil {
		return
	}

	if err := h.uc.UpdatePattern(stdCtx, id, patternFromRequest(req)); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// @Summary Delete series
// @Tags series
// @Router /api/v1/series/{id} [delete]
func (h *SeriesHandler) DeleteSeries(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing series id", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.ensureOwner(stdCtx, ctx, id, userID); err != nil {
		return
	}

	if err := h.uc.DeleteSeries(stdCtx, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

func (h *SeriesHandler) ensureOwner(stdCtx context.Context, ctx *fasthttp.RequestCtx, id, userID string) error {
	series, err := h.uc.GetSeries(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return err
	}
	if series.UserID != userID {
		h.respondError(ctx, domain.ErrSeriesNotFound)
		return domain.ErrSeriesNotFound
	}
	return nil
}

func patternFromRequest(req transport.PatternRequest) domain.RecurrencePattern {
	pattern := domain.RecurrencePattern{
		Type:     req.Type,
		Interval: req.Interval,
		Count:    req.Count,
	}
	if end := parseTime(req.EndDate); end != nil {
		pattern.EndDate = end
	}
	return pattern
}

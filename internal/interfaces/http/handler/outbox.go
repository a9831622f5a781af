package handler

import (
	eventapp "github.com/pharmacy/backend/internal/application/event"
	"github.com/pharmacy/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OutboxHandler exposes the operational surface of the outbox: backlog
// counts, dead-letter inspection, requeue and discard.
type OutboxHandler struct {
	BaseHandler
	events *eventapp.Service
}

// NewOutboxHandler creates a new OutboxHandler
func NewOutboxHandler(events *eventapp.Service) *OutboxHandler {
	return &OutboxHandler{events: events}
}

// Counts returns the outbox backlog per status.
// GET /api/v1/outbox/counts
func (h *OutboxHandler) Counts(c *gin.Context) {
	counts, err := h.events.Counts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, counts)
}

// ListDeadLetters lists dead-lettered events, newest first.
// GET /api/v1/outbox/dead-letters
func (h *OutboxHandler) ListDeadLetters(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	req.Normalize()

	page, err := h.events.ListDeadLetters(c.Request.Context(), req.Page, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Requeue republishes a dead-lettered event and removes it from the
// dead-letter store once the broker accepts it.
// POST /api/v1/outbox/dead-letters/:id/requeue
func (h *OutboxHandler) Requeue(c *gin.Context) {
	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BindingError(c, err)
		return
	}

	if err := h.events.Requeue(c.Request.Context(), uuid.MustParse(idReq.ID)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Discard permanently removes a dead-lettered event.
// DELETE /api/v1/outbox/dead-letters/:id
func (h *OutboxHandler) Discard(c *gin.Context) {
	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BindingError(c, err)
		return
	}

	if err := h.events.Discard(c.Request.Context(), uuid.MustParse(idReq.ID)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

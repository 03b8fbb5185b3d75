package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"eventcrm/internal/authz"
	"eventcrm/internal/board"
	"eventcrm/internal/services"
	"eventcrm/internal/workflow"
)

type BoardHandler struct {
	Service *services.BoardService
}

func NewBoardHandler(service *services.BoardService) *BoardHandler {
	return &BoardHandler{Service: service}
}

// Board отдаёт колонки доски и карточки с незавершёнными обновлениями.
func (h *BoardHandler) Board(c *gin.Context) {
	columns := h.Service.Columns()

	var pending []string
	for _, col := range columns {
		for _, lead := range col.Leads {
			if h.Service.Store.Pending(lead.ID) {
				pending = append(pending, lead.ID)
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"columns": columns,
		"pending": pending,
	})
}

func (h *BoardHandler) Refresh(c *gin.Context) {
	if err := h.Service.Refresh(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to refresh leads from CRM"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(h.Service.Store.List())})
}

func (h *BoardHandler) DragStart(c *gin.Context) {
	id := c.Param("id")
	if err := h.Service.Ctrl.OnDragStart(id); err != nil {
		switch {
		case errors.Is(err, board.ErrLeadNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
		case errors.Is(err, board.ErrCardBusy):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": h.Service.Ctrl.State(id).String()})
}

func (h *BoardHandler) DragCancel(c *gin.Context) {
	id := c.Param("id")
	h.Service.Ctrl.OnDragCancel(id)
	c.JSON(http.StatusOK, gin.H{"state": h.Service.Ctrl.State(id).String()})
}

type moveRequest struct {
	ToStatus string `json:"to_status" binding:"required"`
}

// Move — бросок карточки на колонку. staff двигает только свои лиды.
func (h *BoardHandler) Move(c *gin.Context) {
	id := c.Param("id")

	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !workflow.IsValidStatus(req.ToStatus) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}

	userID, roleID := getUserAndRole(c)
	if authz.IsReadOnly(roleID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "read-only role"})
		return
	}

	lead, ok := h.Service.Lead(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
		return
	}
	if lead.AssignedTo != userID && lead.CreatedBy != userID && !authz.IsElevated(roleID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	res := h.Service.MoveLead(c.Request.Context(), userID, id, req.ToStatus)
	switch res.Outcome {
	case board.OutcomeMoved:
		updated, _ := h.Service.Lead(id)
		c.JSON(http.StatusOK, gin.H{"moved": true, "lead": updated})
	case board.OutcomeNoOp:
		c.JSON(http.StatusOK, gin.H{"moved": false})
	case board.OutcomeNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": res.Notice})
	default: // rejected либо rolled back — для клиента одинаково
		c.JSON(http.StatusConflict, gin.H{"moved": false, "error": res.Notice})
	}
}

// AllowedTargets — куда можно тащить карточку (для подсветки колонок).
func (h *BoardHandler) AllowedTargets(c *gin.Context) {
	id := c.Param("id")
	lead, ok := h.Service.Lead(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
		return
	}
	targets := workflow.AllowedTargets(lead.Status)
	if targets == nil {
		targets = []string{}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   lead.Status,
		"terminal": workflow.IsTerminal(lead.Status),
		"targets":  targets,
	})
}

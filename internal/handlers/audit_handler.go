package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"eventcrm/internal/audit"
)

type AuditHandler struct {
	Repo *audit.TransitionLogRepository
}

func NewAuditHandler(repo *audit.TransitionLogRepository) *AuditHandler {
	return &AuditHandler{Repo: repo}
}

// History — журнал попыток перехода по лиду (включая отказы и откаты).
func (h *AuditHandler) History(c *gin.Context) {
	leadID := c.Param("id")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	records, err := h.Repo.ListByLead(leadID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if records == nil {
		records = []*audit.TransitionRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"items": records})
}

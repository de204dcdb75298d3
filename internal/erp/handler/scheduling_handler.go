package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moneerbcm20-rgb/decora-erp/internal/erp/entity"
	"github.com/moneerbcm20-rgb/decora-erp/internal/erp/service"
)

type SchedulingHandler struct {
	svc *service.SchedulingService
}

func NewSchedulingHandler(svc *service.SchedulingService) *SchedulingHandler {
	return &SchedulingHandler{svc: svc}
}

type suggestRequest struct {
	// 产品 ID → 数量
	Quantities     map[string]int `json:"quantities" binding:"required"`
	ExcludeOrderID string         `json:"exclude_order_id"`
}

// Suggest 交付日期建议；数量合计为零时 data 为 null
func (h *SchedulingHandler) Suggest(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	suggestion := h.svc.SuggestDeliveryDate(req.Quantities, req.ExcludeOrderID)
	if suggestion == nil {
		c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": suggestion})
}

type checkDateRequest struct {
	Date           entity.Time `json:"date" binding:"required"`
	ExcludeOrderID string      `json:"exclude_order_id"`
}

// CheckDate 手工选日前的单日冲突检查，不做顺延
func (h *SchedulingHandler) CheckDate(c *gin.Context) {
	var req checkDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	conflictID := h.svc.CheckDate(req.Date.Time, req.ExcludeOrderID)
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": gin.H{"conflicting_order_id": conflictID}})
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/moneerbcm20-rgb/decora-erp/internal/erp/service"
	"github.com/moneerbcm20-rgb/decora-erp/internal/shared/advisor"
)

// AdviceHandler 经营建议代理，外部顾问服务不可用时返回空建议而不是报错
type AdviceHandler struct {
	client  *advisor.Client
	billing *service.BillingService
	logger  *zap.Logger
}

func NewAdviceHandler(client *advisor.Client, billing *service.BillingService) *AdviceHandler {
	return &AdviceHandler{client: client, billing: billing, logger: zap.L()}
}

// GetAdvice GET /advice
func (h *AdviceHandler) GetAdvice(c *gin.Context) {
	if h.client == nil {
		c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": nil})
		return
	}
	sum := h.billing.Summary()
	advice, err := h.client.GetAdvice(c.Request.Context(), advisor.AdviceRequest{
		Revenue:         sum.Revenue,
		Outstanding:     sum.Outstanding,
		TotalExpenses:   sum.TotalExpenses,
		ActiveOrders:    sum.ActiveOrders,
		DeliveredOrders: sum.DeliveredOrders,
	})
	if err != nil {
		h.logger.Warn("顾问服务请求失败", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": gin.H{"advice": advice}})
}

package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/moneerbcm20-rgb/decora-erp/internal/erp/service"
	"github.com/moneerbcm20-rgb/decora-erp/internal/erp/sse"
)

// Handlers 处理器集合
type Handlers struct {
	Auth       *AuthHandler
	Sales      *SalesHandler
	Catalog    *CatalogHandler
	Scheduling *SchedulingHandler
	Billing    *BillingHandler
	Report     *ReportHandler
	Backup     *BackupHandler
	Advice     *AdviceHandler
	SSE        *SSEHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svc *service.Services, hub *sse.Hub) *Handlers {
	return &Handlers{
		Auth:       NewAuthHandler(svc.Auth),
		Sales:      NewSalesHandler(svc.Sales),
		Catalog:    NewCatalogHandler(svc.Catalog),
		Scheduling: NewSchedulingHandler(svc.Scheduling),
		Billing:    NewBillingHandler(svc.Billing),
		Report:     NewReportHandler(svc.Report, svc.Billing),
		Backup:     NewBackupHandler(svc.Backup),
		Advice:     NewAdviceHandler(svc.Advisor, svc.Billing),
		SSE:        NewSSEHandler(hub),
	}
}

// GetUserID 从 gin context 取当前用户 ID
func GetUserID(c *gin.Context) string {
	if v, exists := c.Get("user_id"); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

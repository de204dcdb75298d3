package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moneerbcm20-rgb/decora-erp/internal/erp/service"
)

type ReportHandler struct {
	svc     *service.ReportService
	billing *service.BillingService
}

func NewReportHandler(svc *service.ReportService, billing *service.BillingService) *ReportHandler {
	return &ReportHandler{svc: svc, billing: billing}
}

// Summary GET /reports/summary
func (h *ReportHandler) Summary(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": h.billing.Summary()})
}

// ExportStatement GET /reports/statement
func (h *ReportHandler) ExportStatement(c *gin.Context) {
	f, filename, err := h.svc.ExportStatement()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": "write excel: " + err.Error()})
	}
}

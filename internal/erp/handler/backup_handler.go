package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moneerbcm20-rgb/decora-erp/internal/erp/service"
)

type BackupHandler struct {
	svc *service.BackupService
}

func NewBackupHandler(svc *service.BackupService) *BackupHandler {
	return &BackupHandler{svc: svc}
}

// Export GET /backup/export 导出全量快照
func (h *BackupHandler) Export(c *gin.Context) {
	c.Header("Content-Disposition", "attachment; filename=\"decora-backup.json\"")
	c.JSON(http.StatusOK, h.svc.Export())
}

// Import POST /backup/import 整体替换内存数据集
func (h *BackupHandler) Import(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	if err := h.svc.Import(raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": "快照解析失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success"})
}

// SaveRemote POST /backup/save-remote 推送快照到已配置的远端目标
func (h *BackupHandler) SaveRemote(c *gin.Context) {
	result := h.svc.SaveRemote(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": result})
}

// LoadRemote POST /backup/load-remote 从远端恢复，按优先级取第一个可用快照
func (h *BackupHandler) LoadRemote(c *gin.Context) {
	result, err := h.svc.LoadRemote(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": result})
}

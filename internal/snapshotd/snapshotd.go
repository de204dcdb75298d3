// Package snapshotd 远端快照寄存服务：按名字保存/读取整份 JSON 快照。
// 内容不做解析，写入即覆盖并递增修订号，修订号仅用于排查。
package snapshotd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SnapshotRecord 单份命名快照
type SnapshotRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Content   []byte    `json:"-"`
	Revision  int64     `gorm:"not null;default:0" json:"revision"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SnapshotRecord) TableName() string {
	return "snapshots"
}

// OpenDB 根据 DSN 选择驱动：postgres:// 前缀走 postgres，其余按 sqlite 文件路径处理
func OpenDB(dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "host=") {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&SnapshotRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate snapshots table: %w", err)
	}
	return db, nil
}

type Server struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewServer(db *gorm.DB, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{db: db, logger: logger}
}

// Put 覆盖写入命名快照，返回新修订号
func (s *Server) Put(name string, content []byte) (int64, error) {
	if !json.Valid(content) {
		return 0, fmt.Errorf("快照不是合法 JSON")
	}
	var rec SnapshotRecord
	err := s.db.Where("name = ?", name).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		rec = SnapshotRecord{Name: name, Content: content, Revision: 1}
		if err := s.db.Create(&rec).Error; err != nil {
			return 0, fmt.Errorf("创建快照失败: %w", err)
		}
		return rec.Revision, nil
	}
	if err != nil {
		return 0, fmt.Errorf("查询快照失败: %w", err)
	}
	rec.Content = content
	rec.Revision++
	if err := s.db.Save(&rec).Error; err != nil {
		return 0, fmt.Errorf("更新快照失败: %w", err)
	}
	return rec.Revision, nil
}

// Get 读取命名快照
func (s *Server) Get(name string) (*SnapshotRecord, error) {
	var rec SnapshotRecord
	if err := s.db.Where("name = ?", name).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// List 列出所有快照的元信息，不含内容
func (s *Server) List() ([]SnapshotRecord, error) {
	var recs []SnapshotRecord
	if err := s.db.Select("id", "name", "revision", "updated_at").Order("name").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("查询快照列表失败: %w", err)
	}
	return recs, nil
}

// Router 构建 HTTP 路由
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "snapshotd"})
	})

	v1 := router.Group("/api/v1/snapshots")
	{
		v1.GET("", s.handleList)
		v1.PUT("/:name", s.handlePut)
		v1.GET("/:name", s.handleGet)
	}
	return router
}

func (s *Server) handlePut(c *gin.Context) {
	content, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	revision, err := s.Put(c.Param("name"), content)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	s.logger.Info("snapshot stored",
		zap.String("name", c.Param("name")),
		zap.Int64("revision", revision),
		zap.Int("bytes", len(content)),
	)
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": gin.H{"revision": revision}})
}

func (s *Server) handleGet(c *gin.Context) {
	rec, err := s.Get(c.Param("name"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": 10002, "message": "快照不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
		return
	}
	c.Header("X-Snapshot-Revision", strconv.FormatInt(rec.Revision, 10))
	c.Data(http.StatusOK, "application/json", rec.Content)
}

func (s *Server) handleList(c *gin.Context) {
	recs, err := s.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": recs})
}

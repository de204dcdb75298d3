package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/moneerbcm20-rgb/decora-erp/internal/config"
	erpHandler "github.com/moneerbcm20-rgb/decora-erp/internal/erp/handler"
	erpService "github.com/moneerbcm20-rgb/decora-erp/internal/erp/service"
	"github.com/moneerbcm20-rgb/decora-erp/internal/erp/sse"
	"github.com/moneerbcm20-rgb/decora-erp/internal/erp/store"
	"github.com/moneerbcm20-rgb/decora-erp/internal/middleware"
	"github.com/moneerbcm20-rgb/decora-erp/internal/shared/advisor"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()
	zap.ReplaceGlobals(zapLogger)

	zapLogger.Info("Starting decora-erp service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 打开本地快照库
	st, err := store.Open(cfg.Store.Path, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to open snapshot store", zap.Error(err))
	}
	zapLogger.Info("Snapshot store opened", zap.String("path", st.Path()))

	// 可选外部依赖
	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			zapLogger.Warn("Redis unreachable, remote snapshot via redis disabled", zap.Error(err))
		}
	}

	var minioClient *minio.Client
	if cfg.MinIO.Enabled() {
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			zapLogger.Warn("MinIO client init failed, archive backup disabled", zap.Error(err))
			minioClient = nil
		}
	}

	var advisorClient *advisor.Client
	if cfg.Advisor.BaseURL != "" {
		advisorClient = advisor.NewClient(cfg.Advisor.BaseURL, cfg.Advisor.APIKey)
	}

	// SSE hub：数据变更推送到看板
	hub := sse.NewHub()
	st.OnChange = hub.PublishChange

	// 装配服务
	services := erpService.NewServices(st, erpService.Deps{
		Auth: erpService.AuthConfig{
			Secret:             cfg.JWT.Secret,
			Issuer:             cfg.JWT.Issuer,
			AccessTokenExpire:  cfg.JWT.AccessTokenExpire,
			RefreshTokenExpire: cfg.JWT.RefreshTokenExpire,
		},
		SchedulerStep: cfg.Scheduler.Step,
		Backup: erpService.BackupTargets{
			Redis:       rdb,
			RedisKey:    cfg.Redis.Key,
			Minio:       minioClient,
			MinioBucket: cfg.MinIO.Bucket,
			SnapshotURL: cfg.Snapshot.URL,
		},
		Advisor: advisorClient,
		Logger:  zapLogger,
	})
	handlers := erpHandler.NewHandlers(services, hub)

	// 自动备份
	backupCtx, cancelBackup := context.WithCancel(context.Background())
	go services.Backup.RunAutoBackup(backupCtx)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/v1/events"})))

	// 健康检查
	router.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "decora-erp"})
	})
	router.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "decora-erp"})
	})

	// 版本信息
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":    "decora-erp",
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	// 认证
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/login", handlers.Auth.Login)
		auth.POST("/refresh", handlers.Auth.Refresh)
	}

	// 业务 API
	v1 := router.Group("/api/v1")
	v1.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		// 客户管理
		customers := v1.Group("/customers")
		{
			customers.GET("", handlers.Sales.ListCustomers)
			customers.POST("", handlers.Sales.CreateCustomer)
			customers.GET("/:id", handlers.Sales.GetCustomer)
			customers.DELETE("/:id", handlers.Sales.DeleteCustomer)
		}

		// 产品目录
		products := v1.Group("/products")
		{
			products.GET("", handlers.Catalog.ListProducts)
			products.POST("", handlers.Catalog.CreateProduct)
			products.PUT("/:id", handlers.Catalog.UpdateProduct)
		}

		// 生产订单
		orders := v1.Group("/orders")
		{
			orders.GET("", handlers.Sales.ListOrders)
			orders.POST("", handlers.Sales.CreateOrder)
			orders.GET("/board", handlers.Sales.Board)
			orders.GET("/:id", handlers.Sales.GetOrder)
			orders.DELETE("/:id", handlers.Sales.DeleteOrder)
			orders.PATCH("/:id", handlers.Sales.EditOrder)
			orders.POST("/:id/status", handlers.Sales.ChangeStatus)
			orders.POST("/:id/reschedule", handlers.Sales.Reschedule)
		}

		// 交付排期
		scheduling := v1.Group("/scheduling")
		{
			scheduling.POST("/suggest", handlers.Scheduling.Suggest)
			scheduling.POST("/check", handlers.Scheduling.CheckDate)
		}

		// 发票
		invoices := v1.Group("/invoices")
		{
			invoices.GET("", handlers.Billing.ListInvoices)
			invoices.POST("", handlers.Billing.CreateInvoice)
			invoices.GET("/:id", handlers.Billing.GetInvoice)
		}

		// 收款单
		receipts := v1.Group("/receipts")
		{
			receipts.GET("", handlers.Billing.ListReceipts)
			receipts.POST("", handlers.Billing.CreateReceipt)
		}

		// 支出
		expenses := v1.Group("/expenses")
		{
			expenses.GET("", handlers.Billing.ListExpenses)
			expenses.POST("", handlers.Billing.CreateExpense)
			expenses.DELETE("/:id", handlers.Billing.DeleteExpense)
		}

		// 报表
		reports := v1.Group("/reports")
		{
			reports.GET("/summary", handlers.Report.Summary)
			reports.GET("/statement", handlers.Report.ExportStatement)
		}

		// 经营建议
		v1.GET("/advice", handlers.Advice.GetAdvice)

		// 备份恢复（仅管理员）
		backup := v1.Group("/backup")
		backup.Use(middleware.RequireRole("admin"))
		{
			backup.GET("/export", handlers.Backup.Export)
			backup.POST("/import", handlers.Backup.Import)
			backup.POST("/save-remote", handlers.Backup.SaveRemote)
			backup.POST("/load-remote", handlers.Backup.LoadRemote)
		}

		// SSE 看板变更推送
		v1.GET("/events", handlers.SSE.Stream)
	}

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")
	cancelBackup()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	st.Flush()
	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}
	return zapCfg.Build()
}

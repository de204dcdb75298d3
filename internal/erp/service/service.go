package service

import (
	"github.com/moneerbcm20-rgb/decora-erp/internal/erp/store"
	"github.com/moneerbcm20-rgb/decora-erp/internal/shared/advisor"
	"go.uber.org/zap"
)

// Services 服务集合
type Services struct {
	Auth       *AuthService
	Catalog    *CatalogService
	Sales      *SalesService
	Billing    *BillingService
	Scheduling *SchedulingService
	Backup     *BackupService
	Report     *ReportService
	Advisor    *advisor.Client // 可选，未配置为 nil
}

// Deps 服务装配依赖
type Deps struct {
	Auth          AuthConfig
	SchedulerStep int
	Backup        BackupTargets
	Advisor       *advisor.Client
	Logger        *zap.Logger
}

func NewServices(st *store.Store, deps Deps) *Services {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	billing := NewBillingService(st)
	scheduling := NewSchedulingService(st, deps.SchedulerStep)
	return &Services{
		Auth:       NewAuthService(st, deps.Backup.Redis, deps.Auth),
		Catalog:    NewCatalogService(st),
		Sales:      NewSalesService(st, scheduling, billing),
		Billing:    billing,
		Scheduling: scheduling,
		Backup:     NewBackupService(st, deps.Backup, deps.Logger),
		Report:     NewReportService(st, billing),
		Advisor:    deps.Advisor,
	}
}

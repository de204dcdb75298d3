package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/moneerbcm20-rgb/decora-erp/internal/erp/entity"
	"github.com/moneerbcm20-rgb/decora-erp/internal/erp/store"
)

// CatalogService 产品目录管理
// 目录只增改不删；订单保存行项目快照，改目录不回写历史订单
type CatalogService struct {
	store *store.Store
	now   func() time.Time
}

func NewCatalogService(st *store.Store) *CatalogService {
	return &CatalogService{store: st, now: time.Now}
}

type CreateProductRequest struct {
	Name           string `json:"name" binding:"required"`
	ProductionDays int    `json:"production_days" binding:"required,gt=0"`
	Icon           string `json:"icon"`
	Color          string `json:"color"`
}

func (s *CatalogService) CreateProduct(req CreateProductRequest) (*entity.Product, error) {
	p := &entity.Product{
		ID:             uuid.New().String(),
		Name:           req.Name,
		ProductionDays: req.ProductionDays,
		Icon:           req.Icon,
		Color:          req.Color,
		CreatedAt:      entity.NewTime(s.now()),
	}
	if err := s.store.CreateProduct(p); err != nil {
		return nil, fmt.Errorf("创建产品失败: %w", err)
	}
	return p, nil
}

type UpdateProductRequest struct {
	Name           string `json:"name"`
	ProductionDays int    `json:"production_days"`
	Icon           string `json:"icon"`
	Color          string `json:"color"`
}

func (s *CatalogService) UpdateProduct(id string, req UpdateProductRequest) (*entity.Product, error) {
	p, err := s.store.GetProduct(id)
	if err != nil {
		return nil, fmt.Errorf("产品不存在: %w", err)
	}
	if req.Name != "" {
		p.Name = req.Name
	}
	if req.ProductionDays > 0 {
		p.ProductionDays = req.ProductionDays
	}
	if req.Icon != "" {
		p.Icon = req.Icon
	}
	if req.Color != "" {
		p.Color = req.Color
	}
	if err := s.store.UpdateProduct(p); err != nil {
		return nil, fmt.Errorf("更新产品失败: %w", err)
	}
	return p, nil
}

func (s *CatalogService) ListProducts() []entity.Product {
	return s.store.ListProducts()
}

package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/moneerbcm20-rgb/decora-erp/internal/erp/entity"
	"github.com/moneerbcm20-rgb/decora-erp/internal/erp/store"
)

// SalesService 客户与生产订单
type SalesService struct {
	store      *store.Store
	scheduling *SchedulingService
	billing    *BillingService
	now        func() time.Time
}

func NewSalesService(st *store.Store, scheduling *SchedulingService, billing *BillingService) *SalesService {
	return &SalesService{store: st, scheduling: scheduling, billing: billing, now: time.Now}
}

// --- Customer ---

type CreateCustomerRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (s *SalesService) CreateCustomer(req CreateCustomerRequest) (*entity.Customer, error) {
	customer := &entity.Customer{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Phone:     req.Phone,
		Address:   req.Address,
		CreatedAt: entity.NewTime(s.now()),
	}
	if err := s.store.CreateCustomer(customer); err != nil {
		return nil, fmt.Errorf("创建客户失败: %w", err)
	}
	return customer, nil
}

func (s *SalesService) ListCustomers() []entity.Customer {
	return s.store.ListCustomers()
}

func (s *SalesService) GetCustomerByID(id string) (*entity.Customer, error) {
	return s.store.GetCustomer(id)
}

// DeleteCustomer 名下存在订单时整体拒绝，客户与订单均不变
func (s *SalesService) DeleteCustomer(id string) error {
	return s.store.DeleteCustomer(id)
}

// --- Order ---

type CreateOrderItem struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// CreateOrderRequest 下单请求
// 旧系统下单流程要求同时开票并收取非零定金，这里作为同一原子操作完成
type CreateOrderRequest struct {
	CustomerID    string            `json:"customer_id" binding:"required"`
	Items         []CreateOrderItem `json:"items" binding:"required,min=1"`
	DeliveryDate  entity.Time       `json:"delivery_date" binding:"required"`
	Price         int64             `json:"price" binding:"required,gt=0"`
	DueDate       entity.Time       `json:"due_date"`
	DepositAmount int64             `json:"deposit_amount" binding:"required,gt=0"`
	Notes         string            `json:"notes"`
}

// CreateOrder 创建订单，连带开具发票并登记定金收款单
func (s *SalesService) CreateOrder(req CreateOrderRequest) (*entity.Order, error) {
	if _, err := s.store.GetCustomer(req.CustomerID); err != nil {
		return nil, fmt.Errorf("客户不存在: %w", err)
	}

	items := make([]entity.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		p, err := s.store.GetProduct(it.ProductID)
		if err != nil {
			return nil, fmt.Errorf("产品不存在: %w", err)
		}
		items = append(items, entity.OrderItem{
			ProductID:      p.ID,
			ProductName:    p.Name,
			Quantity:       it.Quantity,
			ProductionDays: p.ProductionDays,
		})
	}

	now := s.now()
	if req.DeliveryDate.Time.Before(entity.Midnight(now)) {
		return nil, fmt.Errorf("交付日期不能早于下单日期")
	}

	order := &entity.Order{
		ID:                  uuid.New().String(),
		CustomerID:          req.CustomerID,
		Items:               items,
		Description:         entity.ComposeDescription(items),
		OrderDate:           entity.NewTime(now),
		DeliveryDate:        req.DeliveryDate,
		Status:              entity.OrderStatusManufacturing,
		TotalProductionDays: s.scheduling.TotalProductionDays(items),
		Price:               req.Price,
		CreatedAt:           entity.NewTime(now),
		UpdatedAt:           entity.NewTime(now),
	}
	if err := s.store.CreateOrder(order); err != nil {
		return nil, fmt.Errorf("创建订单失败: %w", err)
	}

	// 开票 + 定金，失败时回滚订单
	invoice, err := s.billing.CreateInvoice(CreateInvoiceRequest{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		DueDate:    req.DueDate,
		Items:      []entity.InvoiceItem{{Description: order.Description, Amount: req.Price}},
	})
	if err != nil {
		s.store.DeleteOrder(order.ID)
		return nil, fmt.Errorf("开具发票失败: %w", err)
	}
	if _, err := s.billing.CreateReceipt(CreateReceiptRequest{
		InvoiceID:   invoice.ID,
		Amount:      req.DepositAmount,
		PaymentDate: entity.NewTime(now),
		Notes:       req.Notes,
	}); err != nil {
		s.store.DeleteOrder(order.ID)
		return nil, fmt.Errorf("登记定金失败: %w", err)
	}

	created, err := s.store.GetOrder(order.ID)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *SalesService) ListOrders() []entity.Order {
	return s.store.ListOrders()
}

func (s *SalesService) GetOrderByID(id string) (*entity.Order, error) {
	return s.store.GetOrder(id)
}

// DeleteOrder 管理员删除订单，级联删除关联发票
func (s *SalesService) DeleteOrder(id string) error {
	return s.store.DeleteOrder(id)
}

// ChangeStatus 看板拖拽流转
// 三个状态间任意流转均允许（返工时可从 shipping 拖回 manufacturing）
func (s *SalesService) ChangeStatus(id, newStatus string) (*entity.Order, error) {
	if !entity.ValidOrderStatus(newStatus) {
		return nil, fmt.Errorf("非法订单状态: %s", newStatus)
	}
	order, err := s.store.GetOrder(id)
	if err != nil {
		return nil, fmt.Errorf("订单不存在: %w", err)
	}
	order.Status = newStatus
	order.UpdatedAt = entity.NewTime(s.now())
	if err := s.store.UpdateOrder(order); err != nil {
		return nil, err
	}
	return order, nil
}

// Reschedule 改期：只改日期并打改期标记，不改状态
func (s *SalesService) Reschedule(id string, newDate entity.Time) (*entity.Order, error) {
	order, err := s.store.GetOrder(id)
	if err != nil {
		return nil, fmt.Errorf("订单不存在: %w", err)
	}
	if newDate.Time.Before(entity.Midnight(order.OrderDate.Time)) {
		return nil, fmt.Errorf("交付日期不能早于下单日期")
	}
	order.DeliveryDate = newDate
	order.IsRescheduled = true
	order.UpdatedAt = entity.NewTime(s.now())
	if err := s.store.UpdateOrder(order); err != nil {
		return nil, err
	}
	return order, nil
}

// EditOrderRequest 订单编辑补丁，nil 字段不动
type EditOrderRequest struct {
	Price      *int64  `json:"price"`
	PaidAmount *int64  `json:"paid_amount"`
	Status     *string `json:"status"`
}

// EditOrder 手工修正价格/已收款/状态；改动已收款后重算关联发票状态
func (s *SalesService) EditOrder(id string, req EditOrderRequest) (*entity.Order, error) {
	order, err := s.store.GetOrder(id)
	if err != nil {
		return nil, fmt.Errorf("订单不存在: %w", err)
	}
	if req.Status != nil {
		if !entity.ValidOrderStatus(*req.Status) {
			return nil, fmt.Errorf("非法订单状态: %s", *req.Status)
		}
		order.Status = *req.Status
	}
	if req.Price != nil {
		order.Price = *req.Price
	}
	if req.PaidAmount != nil {
		order.PaidAmount = *req.PaidAmount
	}
	order.UpdatedAt = entity.NewTime(s.now())
	if err := s.store.UpdateOrder(order); err != nil {
		return nil, err
	}
	if req.PaidAmount != nil || req.Price != nil {
		s.billing.RefreshInvoicesForOrder(order)
	}
	return order, nil
}

// Board 看板视图：按状态分三列
func (s *SalesService) Board() map[string][]entity.Order {
	board := map[string][]entity.Order{
		entity.OrderStatusManufacturing: {},
		entity.OrderStatusShipping:      {},
		entity.OrderStatusDelivered:     {},
	}
	for _, o := range s.store.ListOrders() {
		board[o.Status] = append(board[o.Status], o)
	}
	return board
}

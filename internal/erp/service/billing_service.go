package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/moneerbcm20-rgb/decora-erp/internal/erp/entity"
	"github.com/moneerbcm20-rgb/decora-erp/internal/erp/store"
)

// BillingService 发票、收款与支出
type BillingService struct {
	store *store.Store
	now   func() time.Time
}

func NewBillingService(st *store.Store) *BillingService {
	return &BillingService{store: st, now: time.Now}
}

// --- Invoice ---

type CreateInvoiceRequest struct {
	OrderID    string               `json:"order_id" binding:"required"`
	CustomerID string               `json:"customer_id" binding:"required"`
	DueDate    entity.Time          `json:"due_date"`
	Status     string               `json:"status" binding:"omitempty,oneof=draft due"` // 缺省 due
	Items      []entity.InvoiceItem `json:"items" binding:"required,min=1"`
}

func (s *BillingService) CreateInvoice(req CreateInvoiceRequest) (*entity.Invoice, error) {
	order, err := s.store.GetOrder(req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("订单不存在: %w", err)
	}
	var total int64
	for _, it := range req.Items {
		total += it.Amount
	}
	status := req.Status
	if status == "" {
		status = entity.InvoiceStatusDue
	}
	inv := &entity.Invoice{
		ID:          uuid.New().String(),
		OrderID:     req.OrderID,
		CustomerID:  req.CustomerID,
		IssueDate:   entity.NewTime(s.now()),
		DueDate:     req.DueDate,
		TotalAmount: total,
		Status:      status,
		Items:       req.Items,
	}
	refreshInvoiceStatus(inv, order.PaidAmount, s.now())
	if err := s.store.CreateInvoice(inv); err != nil {
		return nil, fmt.Errorf("创建发票失败: %w", err)
	}
	return inv, nil
}

func (s *BillingService) ListInvoices() []entity.Invoice {
	return s.store.ListInvoices()
}

func (s *BillingService) GetInvoiceByID(id string) (*entity.Invoice, error) {
	return s.store.GetInvoice(id)
}

// refreshInvoiceStatus 按关联订单已收款重算发票状态
// 已收款 >= 票面金额 => paid；否则过期未付 => overdue；被手工调减后从 paid 退回 due
// 草稿尚未签发，不参与到期判定，但收款足额同样结清
func refreshInvoiceStatus(inv *entity.Invoice, orderPaid int64, now time.Time) {
	switch {
	case inv.TotalAmount > 0 && orderPaid >= inv.TotalAmount:
		inv.Status = entity.InvoiceStatusPaid
	case inv.Status == entity.InvoiceStatusDraft:
	case !inv.DueDate.IsZero() && now.After(inv.DueDate.Time):
		inv.Status = entity.InvoiceStatusOverdue
	case inv.Status == entity.InvoiceStatusPaid || inv.Status == entity.InvoiceStatusOverdue:
		inv.Status = entity.InvoiceStatusDue
	}
}

// RefreshInvoicesForOrder 订单收款变化后重算其全部发票状态
func (s *BillingService) RefreshInvoicesForOrder(order *entity.Order) {
	now := s.now()
	for _, inv := range s.store.ListInvoices() {
		if inv.OrderID != order.ID {
			continue
		}
		before := inv.Status
		refreshInvoiceStatus(&inv, order.PaidAmount, now)
		if inv.Status != before {
			s.store.UpdateInvoice(&inv)
		}
	}
}

// --- PaymentReceipt ---

type CreateReceiptRequest struct {
	InvoiceID   string      `json:"invoice_id" binding:"required"`
	Amount      int64       `json:"amount" binding:"required,gt=0"`
	PaymentDate entity.Time `json:"payment_date"`
	Notes       string      `json:"notes"`
}

// CreateReceipt 登记收款：累加关联订单 paid_amount 并重算发票状态
func (s *BillingService) CreateReceipt(req CreateReceiptRequest) (*entity.PaymentReceipt, error) {
	inv, err := s.store.GetInvoice(req.InvoiceID)
	if err != nil {
		return nil, fmt.Errorf("发票不存在: %w", err)
	}
	order, err := s.store.GetOrder(inv.OrderID)
	if err != nil {
		return nil, fmt.Errorf("发票关联订单不存在: %w", err)
	}

	paymentDate := req.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = entity.NewTime(s.now())
	}
	receipt := &entity.PaymentReceipt{
		ID:          uuid.New().String(),
		InvoiceID:   inv.ID,
		CustomerID:  inv.CustomerID,
		Amount:      req.Amount,
		PaymentDate: paymentDate,
		CreatedAt:   entity.NewTime(s.now()),
		Notes:       req.Notes,
	}
	if err := s.store.CreateReceipt(receipt); err != nil {
		return nil, fmt.Errorf("登记收款失败: %w", err)
	}

	order.PaidAmount += req.Amount
	order.UpdatedAt = entity.NewTime(s.now())
	if err := s.store.UpdateOrder(order); err != nil {
		return nil, fmt.Errorf("更新订单收款失败: %w", err)
	}
	s.RefreshInvoicesForOrder(order)
	return receipt, nil
}

func (s *BillingService) ListReceipts() []entity.PaymentReceipt {
	return s.store.ListReceipts()
}

// --- Expense ---

type CreateExpenseRequest struct {
	Description string      `json:"description" binding:"required"`
	Amount      int64       `json:"amount" binding:"required,gt=0"`
	Category    string      `json:"category" binding:"required"`
	Date        entity.Time `json:"date"`
}

func (s *BillingService) CreateExpense(req CreateExpenseRequest) (*entity.Expense, error) {
	if !entity.ValidExpenseCategory(req.Category) {
		return nil, fmt.Errorf("非法支出分类: %s", req.Category)
	}
	date := req.Date
	if date.IsZero() {
		date = entity.NewTime(s.now())
	}
	e := &entity.Expense{
		ID:          uuid.New().String(),
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
		Date:        date,
	}
	if err := s.store.CreateExpense(e); err != nil {
		return nil, fmt.Errorf("记录支出失败: %w", err)
	}
	return e, nil
}

func (s *BillingService) ListExpenses() []entity.Expense {
	return s.store.ListExpenses()
}

func (s *BillingService) DeleteExpense(id string) error {
	return s.store.DeleteExpense(id)
}

// --- 财务汇总 ---

// FinancialSummary 财务汇总
type FinancialSummary struct {
	Revenue            int64            `json:"revenue"`     // 收款单合计
	Outstanding        int64            `json:"outstanding"` // 订单未收余额合计
	TotalExpenses      int64            `json:"total_expenses"`
	ExpensesByCategory map[string]int64 `json:"expenses_by_category"`
	Net                int64            `json:"net"`
	ActiveOrders       int              `json:"active_orders"`
	DeliveredOrders    int              `json:"delivered_orders"`
}

func (s *BillingService) Summary() FinancialSummary {
	sum := FinancialSummary{ExpensesByCategory: make(map[string]int64)}
	for _, r := range s.store.ListReceipts() {
		sum.Revenue += r.Amount
	}
	for _, o := range s.store.ListOrders() {
		if rest := o.Price - o.PaidAmount; rest > 0 {
			sum.Outstanding += rest
		}
		if o.Active() {
			sum.ActiveOrders++
		} else {
			sum.DeliveredOrders++
		}
	}
	for _, e := range s.store.ListExpenses() {
		sum.TotalExpenses += e.Amount
		sum.ExpensesByCategory[e.Category] += e.Amount
	}
	sum.Net = sum.Revenue - sum.TotalExpenses
	return sum
}

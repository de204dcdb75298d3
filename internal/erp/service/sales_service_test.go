package service

import (
	"testing"
	"time"

	"github.com/moneerbcm20-rgb/decora-erp/internal/erp/entity"
	"github.com/moneerbcm20-rgb/decora-erp/internal/erp/store"
	"github.com/moneerbcm20-rgb/decora-erp/internal/erp/testutil"
)

func newTestSales(t *testing.T) (*store.Store, *SalesService) {
	t.Helper()
	st := testutil.SetupTestStore(t)
	billing := NewBillingService(st)
	billing.now = func() time.Time { return testMonday }
	scheduling := NewSchedulingService(st, 1)
	scheduling.now = func() time.Time { return testMonday }
	sales := NewSalesService(st, scheduling, billing)
	sales.now = func() time.Time { return testMonday }
	return st, sales
}

func TestCreateOrderFullFlow(t *testing.T) {
	st, sales := newTestSales(t)
	customer := testutil.SeedCustomer(t, st, "张三")
	kitchen := testutil.SeedProduct(t, st, "Kitchen", 13)
	door := testutil.SeedProduct(t, st, "Door", 2)

	delivery := entity.NewTime(time.Date(2025, 1, 30, 0, 0, 0, 0, time.UTC))
	order, err := sales.CreateOrder(CreateOrderRequest{
		CustomerID: customer.ID,
		Items: []CreateOrderItem{
			{ProductID: kitchen.ID, Quantity: 1},
			{ProductID: door.ID, Quantity: 2},
		},
		DeliveryDate:  delivery,
		Price:         5000,
		DepositAmount: 1500,
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	if order.Status != entity.OrderStatusManufacturing {
		t.Errorf("Status = %q, want manufacturing", order.Status)
	}
	if order.TotalProductionDays != 17 {
		t.Errorf("TotalProductionDays = %d, want 17", order.TotalProductionDays)
	}
	if order.Description != "Kitchen (x1), Door (x2)" {
		t.Errorf("Description = %q", order.Description)
	}
	if order.PaidAmount != 1500 {
		t.Errorf("PaidAmount = %d, want deposit 1500", order.PaidAmount)
	}

	// 连带一张发票和一张定金收款单
	invoices := st.ListInvoices()
	if len(invoices) != 1 {
		t.Fatalf("len(invoices) = %d, want 1", len(invoices))
	}
	if invoices[0].OrderID != order.ID || invoices[0].TotalAmount != 5000 {
		t.Errorf("invoice = %+v", invoices[0])
	}
	if invoices[0].InvoiceNumber != 1 {
		t.Errorf("InvoiceNumber = %d, want 1", invoices[0].InvoiceNumber)
	}
	receipts := st.ListReceipts()
	if len(receipts) != 1 {
		t.Fatalf("len(receipts) = %d, want 1", len(receipts))
	}
	if receipts[0].Amount != 1500 || receipts[0].InvoiceID != invoices[0].ID {
		t.Errorf("receipt = %+v", receipts[0])
	}
}

func TestCreateOrderPreconditions(t *testing.T) {
	st, sales := newTestSales(t)
	customer := testutil.SeedCustomer(t, st, "张三")
	kitchen := testutil.SeedProduct(t, st, "Kitchen", 13)
	delivery := entity.NewTime(time.Date(2025, 1, 30, 0, 0, 0, 0, time.UTC))

	// 客户不存在
	_, err := sales.CreateOrder(CreateOrderRequest{
		CustomerID:    "nope",
		Items:         []CreateOrderItem{{ProductID: kitchen.ID, Quantity: 1}},
		DeliveryDate:  delivery,
		Price:         1000,
		DepositAmount: 100,
	})
	if err == nil {
		t.Error("expected error for unknown customer")
	}

	// 产品不存在
	_, err = sales.CreateOrder(CreateOrderRequest{
		CustomerID:    customer.ID,
		Items:         []CreateOrderItem{{ProductID: "nope", Quantity: 1}},
		DeliveryDate:  delivery,
		Price:         1000,
		DepositAmount: 100,
	})
	if err == nil {
		t.Error("expected error for unknown product")
	}

	// 交付日早于下单日
	past := entity.NewTime(time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC))
	_, err = sales.CreateOrder(CreateOrderRequest{
		CustomerID:    customer.ID,
		Items:         []CreateOrderItem{{ProductID: kitchen.ID, Quantity: 1}},
		DeliveryDate:  past,
		Price:         1000,
		DepositAmount: 100,
	})
	if err == nil {
		t.Error("expected error for past delivery date")
	}

	// 失败路径不留脏数据
	if n := len(st.ListOrders()); n != 0 {
		t.Errorf("len(orders) = %d after failed creates, want 0", n)
	}
	if n := len(st.ListInvoices()); n != 0 {
		t.Errorf("len(invoices) = %d after failed creates, want 0", n)
	}
}

func TestDeleteCustomerGuard(t *testing.T) {
	st, sales := newTestSales(t)
	customer := testutil.SeedCustomer(t, st, "张三")
	kitchen := testutil.SeedProduct(t, st, "Kitchen", 13)

	delivery := entity.NewTime(time.Date(2025, 1, 30, 0, 0, 0, 0, time.UTC))
	order, err := sales.CreateOrder(CreateOrderRequest{
		CustomerID:    customer.ID,
		Items:         []CreateOrderItem{{ProductID: kitchen.ID, Quantity: 1}},
		DeliveryDate:  delivery,
		Price:         1000,
		DepositAmount: 100,
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	// 有订单在册的客户不可删，已交付也算在册
	if err := sales.DeleteCustomer(customer.ID); err == nil {
		t.Fatal("expected guard error for customer with orders")
	}
	if _, err := sales.GetCustomerByID(customer.ID); err != nil {
		t.Errorf("customer was removed despite guard: %v", err)
	}

	if _, err := sales.ChangeStatus(order.ID, entity.OrderStatusDelivered); err != nil {
		t.Fatalf("ChangeStatus failed: %v", err)
	}
	if err := sales.DeleteCustomer(customer.ID); err == nil {
		t.Fatal("expected guard error even for delivered orders")
	}

	// 订单删干净后才允许删客户
	if err := sales.DeleteOrder(order.ID); err != nil {
		t.Fatalf("DeleteOrder failed: %v", err)
	}
	if err := sales.DeleteCustomer(customer.ID); err != nil {
		t.Errorf("DeleteCustomer after orders gone: %v", err)
	}
}

func TestDeleteOrderCascadesInvoices(t *testing.T) {
	st, sales := newTestSales(t)
	customer := testutil.SeedCustomer(t, st, "张三")
	kitchen := testutil.SeedProduct(t, st, "Kitchen", 13)

	delivery := entity.NewTime(time.Date(2025, 1, 30, 0, 0, 0, 0, time.UTC))
	order, err := sales.CreateOrder(CreateOrderRequest{
		CustomerID:    customer.ID,
		Items:         []CreateOrderItem{{ProductID: kitchen.ID, Quantity: 1}},
		DeliveryDate:  delivery,
		Price:         1000,
		DepositAmount: 100,
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	if err := sales.DeleteOrder(order.ID); err != nil {
		t.Fatalf("DeleteOrder failed: %v", err)
	}
	if n := len(st.ListInvoices()); n != 0 {
		t.Errorf("len(invoices) = %d after order delete, want 0", n)
	}
	// 收款单是财务凭证，保留
	if n := len(st.ListReceipts()); n != 1 {
		t.Errorf("len(receipts) = %d after order delete, want 1", n)
	}
}

func TestChangeStatus(t *testing.T) {
	st, sales := newTestSales(t)
	customer := testutil.SeedCustomer(t, st, "张三")
	order := testutil.SeedOrder(t, st, customer.ID,
		time.Date(2025, 1, 30, 0, 0, 0, 0, time.UTC), entity.OrderStatusManufacturing)

	// 任意方向流转均允许
	for _, status := range []string{
		entity.OrderStatusShipping,
		entity.OrderStatusManufacturing,
		entity.OrderStatusDelivered,
		entity.OrderStatusManufacturing,
	} {
		got, err := sales.ChangeStatus(order.ID, status)
		if err != nil {
			t.Fatalf("ChangeStatus(%q) failed: %v", status, err)
		}
		if got.Status != status {
			t.Errorf("Status = %q, want %q", got.Status, status)
		}
	}

	if _, err := sales.ChangeStatus(order.ID, "canceled"); err == nil {
		t.Error("expected error for invalid status")
	}
}

func TestReschedule(t *testing.T) {
	st, sales := newTestSales(t)
	customer := testutil.SeedCustomer(t, st, "张三")
	order := testutil.SeedOrder(t, st, customer.ID,
		time.Date(2025, 1, 30, 0, 0, 0, 0, time.UTC), entity.OrderStatusShipping)

	newDate := entity.NewTime(time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC))
	got, err := sales.Reschedule(order.ID, newDate)
	if err != nil {
		t.Fatalf("Reschedule failed: %v", err)
	}
	if !got.IsRescheduled {
		t.Error("IsRescheduled not set")
	}
	if entity.DayKey(got.DeliveryDate.Time) != "2025-02-10" {
		t.Errorf("DeliveryDate = %v", got.DeliveryDate.Time)
	}
	// 改期不动状态
	if got.Status != entity.OrderStatusShipping {
		t.Errorf("Status = %q, want shipping", got.Status)
	}

	// 不允许改到下单日之前
	past := entity.NewTime(order.OrderDate.Time.AddDate(0, 0, -3))
	if _, err := sales.Reschedule(order.ID, past); err == nil {
		t.Error("expected error for date before order date")
	}
}

func TestEditOrderRefreshesInvoices(t *testing.T) {
	st, sales := newTestSales(t)
	customer := testutil.SeedCustomer(t, st, "张三")
	kitchen := testutil.SeedProduct(t, st, "Kitchen", 13)

	delivery := entity.NewTime(time.Date(2025, 1, 30, 0, 0, 0, 0, time.UTC))
	order, err := sales.CreateOrder(CreateOrderRequest{
		CustomerID:    customer.ID,
		Items:         []CreateOrderItem{{ProductID: kitchen.ID, Quantity: 1}},
		DeliveryDate:  delivery,
		Price:         1000,
		DepositAmount: 200,
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	// 手工把已收款改到票面金额，发票应翻成 paid
	paid := int64(1000)
	got, err := sales.EditOrder(order.ID, EditOrderRequest{PaidAmount: &paid})
	if err != nil {
		t.Fatalf("EditOrder failed: %v", err)
	}
	if got.PaidAmount != 1000 {
		t.Errorf("PaidAmount = %d, want 1000", got.PaidAmount)
	}
	inv := st.ListInvoices()[0]
	if inv.Status != entity.InvoiceStatusPaid {
		t.Errorf("invoice status = %q, want paid", inv.Status)
	}
}

func TestBoardColumns(t *testing.T) {
	st, sales := newTestSales(t)
	customer := testutil.SeedCustomer(t, st, "张三")
	day := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	testutil.SeedOrder(t, st, customer.ID, day, entity.OrderStatusManufacturing)
	testutil.SeedOrder(t, st, customer.ID, day.AddDate(0, 0, 1), entity.OrderStatusManufacturing)
	testutil.SeedOrder(t, st, customer.ID, day.AddDate(0, 0, 2), entity.OrderStatusDelivered)

	board := sales.Board()
	// 三列始终齐全，空列也要出现
	for _, col := range []string{
		entity.OrderStatusManufacturing,
		entity.OrderStatusShipping,
		entity.OrderStatusDelivered,
	} {
		if _, ok := board[col]; !ok {
			t.Errorf("missing board column %q", col)
		}
	}
	if n := len(board[entity.OrderStatusManufacturing]); n != 2 {
		t.Errorf("manufacturing column = %d orders, want 2", n)
	}
	if n := len(board[entity.OrderStatusShipping]); n != 0 {
		t.Errorf("shipping column = %d orders, want 0", n)
	}
	if n := len(board[entity.OrderStatusDelivered]); n != 1 {
		t.Errorf("delivered column = %d orders, want 1", n)
	}
}

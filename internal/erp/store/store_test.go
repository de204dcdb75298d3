package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/moneerbcm20-rgb/decora-erp/internal/erp/entity"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.json")
	st, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return st, path
}

func TestOpenMissingFile(t *testing.T) {
	st, _ := openTemp(t)
	if n := len(st.ListCustomers()); n != 0 {
		t.Errorf("fresh store has %d customers", n)
	}
	// 默认休息日为周五
	if got := st.GetSettings().OffdayWeekday(); got != time.Friday {
		t.Errorf("default offday = %v, want Friday", got)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	st, path := openTemp(t)
	if err := st.CreateCustomer(&entity.Customer{ID: "c1", Name: "张三", CreatedAt: entity.Now()}); err != nil {
		t.Fatalf("CreateCustomer failed: %v", err)
	}
	if err := st.CreateOrder(&entity.Order{
		ID:           "o1",
		CustomerID:   "c1",
		OrderDate:    entity.Now(),
		DeliveryDate: entity.NewTime(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)),
		Status:       entity.OrderStatusManufacturing,
		Price:        1000,
	}); err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	// 每次写操作落盘，重开后数据还在
	reopened, err := Open(path, nil)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if n := len(reopened.ListCustomers()); n != 1 {
		t.Fatalf("reopened store has %d customers, want 1", n)
	}
	order, err := reopened.GetOrder("o1")
	if err != nil {
		t.Fatalf("GetOrder after reopen: %v", err)
	}
	want := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	if !order.DeliveryDate.Time.Equal(want) {
		t.Errorf("DeliveryDate = %v, want %v", order.DeliveryDate.Time, want)
	}
}

func TestCustomerSerialNumbers(t *testing.T) {
	st, _ := openTemp(t)
	for _, id := range []string{"c1", "c2", "c3"} {
		if err := st.CreateCustomer(&entity.Customer{ID: id, Name: id}); err != nil {
			t.Fatalf("CreateCustomer failed: %v", err)
		}
	}
	customers := st.ListCustomers()
	for i, c := range customers {
		if c.SerialNumber != i+1 {
			t.Errorf("SerialNumber[%d] = %d, want %d", i, c.SerialNumber, i+1)
		}
	}
}

func TestDeleteCustomerGuard(t *testing.T) {
	st, _ := openTemp(t)
	st.CreateCustomer(&entity.Customer{ID: "c1", Name: "张三"})
	st.CreateOrder(&entity.Order{ID: "o1", CustomerID: "c1", Status: entity.OrderStatusDelivered})

	err := st.DeleteCustomer("c1")
	if !errors.Is(err, ErrCustomerHasOrders) {
		t.Fatalf("DeleteCustomer = %v, want ErrCustomerHasOrders", err)
	}
	// 拒绝删除时什么都不动
	if _, err := st.GetCustomer("c1"); err != nil {
		t.Errorf("customer gone after refused delete: %v", err)
	}

	if err := st.DeleteCustomer("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteCustomer(unknown) = %v, want ErrNotFound", err)
	}
}

func TestAccountDuplicateUsername(t *testing.T) {
	st, _ := openTemp(t)
	if err := st.CreateAccount(&entity.UserAccount{ID: "u1", Username: "admin", Password: "admin", Role: "admin"}); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	err := st.CreateAccount(&entity.UserAccount{ID: "u2", Username: "admin", Password: "x", Role: "operator"})
	if !errors.Is(err, ErrDuplicateUsername) {
		t.Errorf("CreateAccount(dup) = %v, want ErrDuplicateUsername", err)
	}
}

func TestReplaceWholesale(t *testing.T) {
	st, path := openTemp(t)
	st.CreateCustomer(&entity.Customer{ID: "old", Name: "旧客户"})

	snap := entity.Snapshot{
		Customers: []entity.Customer{{ID: "new", Name: "新客户", SerialNumber: 7}},
		Settings:  entity.Settings{Offday: entity.WeekdayIndex(time.Sunday), BackupIntervalMinutes: 15},
	}
	st.Replace(snap)

	// 整体替换，旧数据不保留
	if _, err := st.GetCustomer("old"); !errors.Is(err, ErrNotFound) {
		t.Errorf("old customer survived replace: %v", err)
	}
	if _, err := st.GetCustomer("new"); err != nil {
		t.Errorf("new customer missing after replace: %v", err)
	}
	if got := st.GetSettings().OffdayWeekday(); got != time.Sunday {
		t.Errorf("offday = %v after replace, want Sunday", got)
	}

	// 替换也要落盘
	reopened, err := Open(path, nil)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if _, err := reopened.GetCustomer("new"); err != nil {
		t.Errorf("replace not persisted: %v", err)
	}
}

func TestOnChangeEvents(t *testing.T) {
	st, _ := openTemp(t)
	var events []string
	st.OnChange = func(event string, data interface{}) {
		events = append(events, event)
	}

	st.CreateCustomer(&entity.Customer{ID: "c1", Name: "张三"})
	st.CreateOrder(&entity.Order{ID: "o1", CustomerID: "c1", Status: entity.OrderStatusManufacturing})
	order, _ := st.GetOrder("o1")
	order.Status = entity.OrderStatusShipping
	st.UpdateOrder(order)
	st.DeleteOrder("o1")

	want := []string{EventCustomerCreated, EventOrderCreated, EventOrderUpdated, EventOrderDeleted}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, events[i], want[i])
		}
	}
}

func TestExportIsDeepCopy(t *testing.T) {
	st, _ := openTemp(t)
	st.CreateOrder(&entity.Order{
		ID:     "o1",
		Status: entity.OrderStatusManufacturing,
		Items:  []entity.OrderItem{{ProductID: "p1", ProductName: "Kitchen", Quantity: 1, ProductionDays: 13}},
	})

	snap := st.Export()
	snap.Orders[0].Items[0].Quantity = 99
	snap.Orders[0].Status = entity.OrderStatusDelivered

	order, _ := st.GetOrder("o1")
	if order.Items[0].Quantity != 1 || order.Status != entity.OrderStatusManufacturing {
		t.Error("mutating an exported snapshot leaked into the store")
	}
}

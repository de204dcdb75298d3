package service

import (
	"testing"
	"time"

	"github.com/moneerbcm20-rgb/decora-erp/internal/erp/entity"
	"github.com/moneerbcm20-rgb/decora-erp/internal/erp/testutil"
)

// 2025-01-06 是周一，休息日默认周五
var testMonday = time.Date(2025, 1, 6, 10, 30, 0, 0, time.UTC)

func TestAddWorkingDays(t *testing.T) {
	// 5 个工作日：周二~周四 3 天，周五跳过，周六周日各 1 天
	got := AddWorkingDays(testMonday, 5, time.Friday)
	want := time.Date(2025, 1, 12, 10, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("AddWorkingDays(5) = %v, want %v", got, want)
	}

	// n=0 原样返回
	if got := AddWorkingDays(testMonday, 0, time.Friday); !got.Equal(testMonday) {
		t.Errorf("AddWorkingDays(0) = %v, want %v", got, testMonday)
	}

	// 结果永远不落在休息日
	for n := 1; n <= 30; n++ {
		if d := AddWorkingDays(testMonday, n, time.Friday); d.Weekday() == time.Friday {
			t.Errorf("AddWorkingDays(%d) landed on the off day: %v", n, d)
		}
	}
}

func TestAddWorkingDaysLongRun(t *testing.T) {
	// 每周 6 个工作日，21 个工作日 = 18 + 3
	got := AddWorkingDays(testMonday, 21, time.Friday)
	want := time.Date(2025, 1, 30, 10, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("AddWorkingDays(21) = %v, want %v", got, want)
	}
}

func TestSuggestDeliveryDateEmpty(t *testing.T) {
	st := testutil.SetupTestStore(t)
	svc := NewSchedulingService(st, 1)
	svc.now = func() time.Time { return testMonday }

	if got := svc.SuggestDeliveryDate(nil, ""); got != nil {
		t.Errorf("SuggestDeliveryDate(nil) = %v, want nil", got)
	}
	if got := svc.SuggestDeliveryDate(map[string]int{}, ""); got != nil {
		t.Errorf("SuggestDeliveryDate(empty) = %v, want nil", got)
	}
	// 数量全为零视同为空
	p := testutil.SeedProduct(t, st, "Kitchen", 13)
	if got := svc.SuggestDeliveryDate(map[string]int{p.ID: 0}, ""); got != nil {
		t.Errorf("SuggestDeliveryDate(zero qty) = %v, want nil", got)
	}
	// 未知产品不计入
	if got := svc.SuggestDeliveryDate(map[string]int{"nope": 3}, ""); got != nil {
		t.Errorf("SuggestDeliveryDate(unknown product) = %v, want nil", got)
	}
}

func TestSuggestDeliveryDateTotals(t *testing.T) {
	st := testutil.SetupTestStore(t)
	svc := NewSchedulingService(st, 1)
	svc.now = func() time.Time { return testMonday }

	kitchen := testutil.SeedProduct(t, st, "Kitchen", 13)
	door := testutil.SeedProduct(t, st, "Door", 2)

	s := svc.SuggestDeliveryDate(map[string]int{kitchen.ID: 1, door.ID: 2}, "")
	if s == nil {
		t.Fatal("expected a suggestion")
	}
	if s.TotalProductionDays != 17 {
		t.Errorf("TotalProductionDays = %d, want 17", s.TotalProductionDays)
	}
	if s.ConflictingOrderID != "" {
		t.Errorf("ConflictingOrderID = %q, want empty", s.ConflictingOrderID)
	}
	// 无冲突时建议日即初始日的零点
	if entity.DayKey(s.FinalDate.Time) != entity.DayKey(s.InitialDate.Time) {
		t.Errorf("FinalDate %v should be same day as InitialDate %v", s.FinalDate, s.InitialDate)
	}
	if got := s.FinalDate.Time; !got.Equal(entity.Midnight(got)) {
		t.Errorf("FinalDate %v is not midnight", got)
	}
}

func TestSuggestDeliveryDateConflict(t *testing.T) {
	st := testutil.SetupTestStore(t)
	svc := NewSchedulingService(st, 1)
	svc.now = func() time.Time { return testMonday }

	kitchen := testutil.SeedProduct(t, st, "Kitchen", 13)
	customer := testutil.SeedCustomer(t, st, "张三")

	// 先算出无冲突时的建议日，然后让一张活跃订单占住它
	free := svc.SuggestDeliveryDate(map[string]int{kitchen.ID: 1}, "")
	blocker := testutil.SeedOrder(t, st, customer.ID, free.FinalDate.Time, entity.OrderStatusManufacturing)

	s := svc.SuggestDeliveryDate(map[string]int{kitchen.ID: 1}, "")
	if s.ConflictingOrderID != blocker.ID {
		t.Errorf("ConflictingOrderID = %q, want %q", s.ConflictingOrderID, blocker.ID)
	}
	if entity.DayKey(s.FinalDate.Time) == entity.DayKey(free.FinalDate.Time) {
		t.Error("FinalDate was not moved off the occupied day")
	}
	// 建议日必须落在空闲日
	if got := svc.CheckDate(s.FinalDate.Time, ""); got != "" {
		t.Errorf("FinalDate still occupied by %q", got)
	}
	// 步进一个工作日
	want := entity.Midnight(AddWorkingDays(free.FinalDate.Time, 1, time.Friday))
	if !s.FinalDate.Time.Equal(want) {
		t.Errorf("FinalDate = %v, want %v", s.FinalDate.Time, want)
	}
}

func TestSuggestDeliveryDateConflictChain(t *testing.T) {
	st := testutil.SetupTestStore(t)
	svc := NewSchedulingService(st, 1)
	svc.now = func() time.Time { return testMonday }

	kitchen := testutil.SeedProduct(t, st, "Kitchen", 13)
	customer := testutil.SeedCustomer(t, st, "张三")

	// 连续占住三个候选日，建议日应跳到第一空闲日，且只报首个冲突
	free := svc.SuggestDeliveryDate(map[string]int{kitchen.ID: 1}, "")
	day := free.FinalDate.Time
	first := testutil.SeedOrder(t, st, customer.ID, day, entity.OrderStatusManufacturing)
	for i := 0; i < 2; i++ {
		day = entity.Midnight(AddWorkingDays(day, 1, time.Friday))
		testutil.SeedOrder(t, st, customer.ID, day, entity.OrderStatusShipping)
	}

	s := svc.SuggestDeliveryDate(map[string]int{kitchen.ID: 1}, "")
	if s.ConflictingOrderID != first.ID {
		t.Errorf("ConflictingOrderID = %q, want first blocker %q", s.ConflictingOrderID, first.ID)
	}
	want := entity.Midnight(AddWorkingDays(day, 1, time.Friday))
	if !s.FinalDate.Time.Equal(want) {
		t.Errorf("FinalDate = %v, want %v", s.FinalDate.Time, want)
	}
}

func TestSuggestDeliveryDateIgnoresDelivered(t *testing.T) {
	st := testutil.SetupTestStore(t)
	svc := NewSchedulingService(st, 1)
	svc.now = func() time.Time { return testMonday }

	kitchen := testutil.SeedProduct(t, st, "Kitchen", 13)
	customer := testutil.SeedCustomer(t, st, "张三")

	free := svc.SuggestDeliveryDate(map[string]int{kitchen.ID: 1}, "")
	testutil.SeedOrder(t, st, customer.ID, free.FinalDate.Time, entity.OrderStatusDelivered)

	s := svc.SuggestDeliveryDate(map[string]int{kitchen.ID: 1}, "")
	if s.ConflictingOrderID != "" {
		t.Errorf("delivered order reported as conflict: %q", s.ConflictingOrderID)
	}
	if !s.FinalDate.Time.Equal(free.FinalDate.Time) {
		t.Errorf("FinalDate moved by a delivered order: %v", s.FinalDate.Time)
	}
}

func TestSuggestDeliveryDateExcludesSelf(t *testing.T) {
	st := testutil.SetupTestStore(t)
	svc := NewSchedulingService(st, 1)
	svc.now = func() time.Time { return testMonday }

	kitchen := testutil.SeedProduct(t, st, "Kitchen", 13)
	customer := testutil.SeedCustomer(t, st, "张三")

	free := svc.SuggestDeliveryDate(map[string]int{kitchen.ID: 1}, "")
	self := testutil.SeedOrder(t, st, customer.ID, free.FinalDate.Time, entity.OrderStatusManufacturing)

	// 改期场景：订单不与自身冲突
	s := svc.SuggestDeliveryDate(map[string]int{kitchen.ID: 1}, self.ID)
	if s.ConflictingOrderID != "" {
		t.Errorf("order conflicts with itself: %q", s.ConflictingOrderID)
	}
	if !s.FinalDate.Time.Equal(free.FinalDate.Time) {
		t.Errorf("FinalDate = %v, want %v", s.FinalDate.Time, free.FinalDate.Time)
	}
}

func TestSuggestDeliveryDateCustomOffday(t *testing.T) {
	st := testutil.SetupTestStore(t)
	set := st.GetSettings()
	set.Offday = entity.WeekdayIndex(time.Sunday)
	st.UpdateSettings(set)

	svc := NewSchedulingService(st, 1)
	svc.now = func() time.Time { return testMonday }

	kitchen := testutil.SeedProduct(t, st, "Kitchen", 6)
	s := svc.SuggestDeliveryDate(map[string]int{kitchen.ID: 1}, "")
	// 周一 + 6 个工作日，跳过周日：周二~周六 5 天，周日跳过，下周一第 6 天
	want := time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)
	if entity.DayKey(s.FinalDate.Time) != entity.DayKey(want) {
		t.Errorf("FinalDate = %v, want %v", s.FinalDate.Time, want)
	}
}

func TestKitchenOrderEndToEnd(t *testing.T) {
	st := testutil.SetupTestStore(t)
	svc := NewSchedulingService(st, 1)
	svc.now = func() time.Time { return testMonday }

	kitchen := testutil.SeedProduct(t, st, "Kitchen", 21)
	customer := testutil.SeedCustomer(t, st, "张三")

	// 已有活跃订单占住 今天+21 个工作日 那一天
	taken := AddWorkingDays(testMonday, 21, time.Friday)
	existing := testutil.SeedOrder(t, st, customer.ID, taken, entity.OrderStatusManufacturing)

	s := svc.SuggestDeliveryDate(map[string]int{kitchen.ID: 1}, "")
	if s == nil {
		t.Fatal("expected a suggestion")
	}
	if s.TotalProductionDays != 21 {
		t.Errorf("TotalProductionDays = %d, want 21", s.TotalProductionDays)
	}
	if s.ConflictingOrderID != existing.ID {
		t.Errorf("ConflictingOrderID = %q, want %q", s.ConflictingOrderID, existing.ID)
	}
	if !s.FinalDate.Time.After(entity.Midnight(taken)) {
		t.Errorf("FinalDate %v is not after the occupied day %v", s.FinalDate.Time, taken)
	}
	if got := svc.CheckDate(s.FinalDate.Time, ""); got != "" {
		t.Errorf("FinalDate still occupied by %q", got)
	}
}

func TestCheckDate(t *testing.T) {
	st := testutil.SetupTestStore(t)
	svc := NewSchedulingService(st, 1)
	svc.now = func() time.Time { return testMonday }

	customer := testutil.SeedCustomer(t, st, "李四")
	day := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	order := testutil.SeedOrder(t, st, customer.ID, day, entity.OrderStatusShipping)

	if got := svc.CheckDate(day, ""); got != order.ID {
		t.Errorf("CheckDate = %q, want %q", got, order.ID)
	}
	// 同一天不同时刻也算冲突
	if got := svc.CheckDate(day.Add(15*time.Hour), ""); got != order.ID {
		t.Errorf("CheckDate(mid-day) = %q, want %q", got, order.ID)
	}
	if got := svc.CheckDate(day, order.ID); got != "" {
		t.Errorf("CheckDate(exclude self) = %q, want empty", got)
	}
	if got := svc.CheckDate(day.AddDate(0, 0, 1), ""); got != "" {
		t.Errorf("CheckDate(free day) = %q, want empty", got)
	}
}

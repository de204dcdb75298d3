package service

import (
	"time"

	"github.com/moneerbcm20-rgb/decora-erp/internal/erp/entity"
	"github.com/moneerbcm20-rgb/decora-erp/internal/erp/store"
)

// AddWorkingDays 从 start 起逐日前进，跳过每周休息日，累计满 n 个工作日后返回
// n=0 时原样返回 start；调用方保证 n>=0
func AddWorkingDays(start time.Time, n int, offday time.Weekday) time.Time {
	t := start
	for counted := 0; counted < n; {
		t = t.AddDate(0, 0, 1)
		if t.Weekday() != offday {
			counted++
		}
	}
	return t
}

// DeliverySuggestion 交付日期建议
type DeliverySuggestion struct {
	InitialDate         entity.Time `json:"initial_date"`          // 按当前负荷的自然最早交付日
	FinalDate           entity.Time `json:"final_date"`            // 冲突消解后的建议交付日（零点）
	ConflictingOrderID  string      `json:"conflicting_order_id"`  // 首个冲突订单，空串=无冲突
	TotalProductionDays int         `json:"total_production_days"`
}

// SchedulingService 交付排期服务：工作日推算 + 冲突检测 + 建议日期
type SchedulingService struct {
	store *store.Store
	step  int              // 冲突消解时每次前进的工作日数
	now   func() time.Time // 测试注入
}

func NewSchedulingService(st *store.Store, step int) *SchedulingService {
	if step <= 0 {
		step = 1
	}
	return &SchedulingService{store: st, step: step, now: time.Now}
}

// offday 读取配置的每周休息日，缺失或越界时回退周五
func (s *SchedulingService) offday() time.Weekday {
	return s.store.GetSettings().OffdayWeekday()
}

// occupiedDays 活跃订单占用的交付日 -> 订单ID
// 已交付订单的日期是历史记录不占产能；excludeOrderID 用于改期时排除自身；
// 同一天被多单占用时后写者覆盖（软冲突策略容忍该情况）
func (s *SchedulingService) occupiedDays(excludeOrderID string) map[string]string {
	occupied := make(map[string]string)
	for _, o := range s.store.ListOrders() {
		if !o.Active() || o.ID == excludeOrderID {
			continue
		}
		occupied[entity.DayKey(o.DeliveryDate.Time)] = o.ID
	}
	return occupied
}

// SuggestDeliveryDate 计算建议交付日期
// quantities 为产品ID->数量；全部为零或为空时返回 nil（无可排期内容，非错误）
// 本函数对合法输入永不报错，冲突只提示不阻断，是否接受由调用方决定
func (s *SchedulingService) SuggestDeliveryDate(quantities map[string]int, excludeOrderID string) *DeliverySuggestion {
	catalog := make(map[string]entity.Product)
	for _, p := range s.store.ListProducts() {
		catalog[p.ID] = p
	}

	total := 0
	for pid, qty := range quantities {
		if qty <= 0 {
			continue
		}
		if p, ok := catalog[pid]; ok {
			total += qty * p.ProductionDays
		}
	}
	if total == 0 {
		return nil
	}

	offday := s.offday()
	occupied := s.occupiedDays(excludeOrderID)

	initial := AddWorkingDays(s.now(), total, offday)
	candidate := entity.Midnight(initial)

	// 只保留首个冲突，后续循环不覆盖
	conflictID := occupied[entity.DayKey(candidate)]

	// 候选日被占用时按 step 个工作日步进，直到落在空闲日
	for {
		if _, taken := occupied[entity.DayKey(candidate)]; !taken {
			break
		}
		candidate = entity.Midnight(AddWorkingDays(candidate, s.step, offday))
	}

	return &DeliverySuggestion{
		InitialDate:         entity.NewTime(initial),
		FinalDate:           entity.NewTime(candidate),
		ConflictingOrderID:  conflictID,
		TotalProductionDays: total,
	}
}

// CheckDate 手工录入路径的单日冲突检查，不做前向搜索
// 返回占用该日的订单ID，空串表示无冲突
func (s *SchedulingService) CheckDate(date time.Time, excludeOrderID string) string {
	return s.occupiedDays(excludeOrderID)[entity.DayKey(date)]
}

// TotalProductionDays 按目录计算一组行项目的生产天数合计
func (s *SchedulingService) TotalProductionDays(items []entity.OrderItem) int {
	total := 0
	for _, it := range items {
		total += it.Quantity * it.ProductionDays
	}
	return total
}

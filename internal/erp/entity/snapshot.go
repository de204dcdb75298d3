package entity

import "time"

// Settings 标量配置，随快照一起备份
type Settings struct {
	BackupIntervalMinutes int    `json:"backup_interval_minutes"`
	Logo                  string `json:"logo"` // data URL
	// Offday 每周休息日，周日=0 起算的下标
	// 早期快照没有该字段，用指针区分"缺失"和显式的周日=0，缺失视同周五
	Offday *int `json:"offday,omitempty"`
}

// OffdayWeekday 配置的每周休息日，缺失或越界时回退周五
func (s Settings) OffdayWeekday() time.Weekday {
	if s.Offday == nil || *s.Offday < 0 || *s.Offday > 6 {
		return time.Friday
	}
	return time.Weekday(*s.Offday)
}

// WeekdayIndex 把星期转成 Offday 字段的下标指针
func WeekdayIndex(d time.Weekday) *int {
	i := int(d)
	return &i
}

// Snapshot 全量数据集快照，备份/恢复的最小单位
// 恢复时整体替换内存集合，不做合并
type Snapshot struct {
	Customers       []Customer       `json:"customers"`
	Orders          []Order          `json:"orders"`
	Expenses        []Expense        `json:"expenses"`
	Invoices        []Invoice        `json:"invoices"`
	PaymentReceipts []PaymentReceipt `json:"payment_receipts"`
	UserAccounts    []UserAccount    `json:"user_accounts"`
	Products        []Product        `json:"products"`
	Settings        Settings         `json:"settings"`
}

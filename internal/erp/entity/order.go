package entity

import (
	"fmt"
	"strings"
)

// OrderStatus 订单状态（看板三列，允许任意拖拽流转）
const (
	OrderStatusManufacturing = "manufacturing"
	OrderStatusShipping      = "shipping"
	OrderStatusDelivered     = "delivered"
)

// ValidOrderStatus 判断状态值是否合法
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusManufacturing, OrderStatusShipping, OrderStatusDelivered:
		return true
	}
	return false
}

// OrderItem 订单行项目（结构化存储，替代旧版自由文本描述）
type OrderItem struct {
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	Quantity       int    `json:"quantity"`
	ProductionDays int    `json:"production_days"` // 下单时的单件生产天数快照
}

// Order 生产订单
type Order struct {
	ID                  string      `json:"id"`
	CustomerID          string      `json:"customer_id"`
	Items               []OrderItem `json:"items"`
	Description         string      `json:"description"` // 由行项目拼出的展示文本，只写不解析
	OrderDate           Time        `json:"order_date"`
	DeliveryDate        Time        `json:"delivery_date"` // 不变式: delivery_date >= order_date
	Status              string      `json:"status"`
	TotalProductionDays int         `json:"total_production_days"`
	Price               int64       `json:"price"`       // 整数货币单位
	PaidAmount          int64       `json:"paid_amount"` // 收款单累加
	IsRescheduled       bool        `json:"is_rescheduled"`
	CreatedAt           Time        `json:"created_at"`
	UpdatedAt           Time        `json:"updated_at"`
}

// Active 是否活跃订单（未交付即占用交付日产能）
func (o *Order) Active() bool {
	return o.Status != OrderStatusDelivered
}

// ComposeDescription 拼装行项目展示文本，如 "Kitchen (x1), Doors (x2)"
func ComposeDescription(items []OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%s (x%d)", it.ProductName, it.Quantity))
	}
	return strings.Join(parts, ", ")
}

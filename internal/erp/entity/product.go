package entity

// Product 产品目录条目（橱柜、门、衣柜等）
// 订单保存行项目快照，目录编辑不影响已有订单
type Product struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ProductionDays int    `json:"production_days"` // 单件生产天数，正整数
	Icon           string `json:"icon"`
	Color          string `json:"color"`
	CreatedAt      Time   `json:"created_at"`
}

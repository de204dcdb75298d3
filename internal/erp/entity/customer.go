package entity

// Customer 客户实体
type Customer struct {
	ID           string `json:"id"`
	SerialNumber int    `json:"serial_number"` // 创建时取 max(existing)+1
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	CreatedAt    Time   `json:"created_at"`
}

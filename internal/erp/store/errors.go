package store

import "errors"

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("record not found")
	// ErrCustomerHasOrders 客户名下存在订单时拒绝删除（引用完整性保护）
	ErrCustomerHasOrders = errors.New("customer has existing orders")
	// ErrDuplicateUsername 账号名重复
	ErrDuplicateUsername = errors.New("username already exists")
)

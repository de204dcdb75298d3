package entity

// PaymentReceipt 收款单，只追加的付款流水
// 每张收款单使关联订单 paid_amount 增加 amount
type PaymentReceipt struct {
	ID            string `json:"id"`
	ReceiptNumber int    `json:"receipt_number"` // 单调递增，max(existing)+1
	InvoiceID     string `json:"invoice_id"`
	CustomerID    string `json:"customer_id"`
	Amount        int64  `json:"amount"`
	PaymentDate   Time   `json:"payment_date"`
	CreatedAt     Time   `json:"created_at"`
	Notes         string `json:"notes,omitempty"`
}

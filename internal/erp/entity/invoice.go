package entity

// InvoiceStatus 发票状态
const (
	InvoiceStatusDraft   = "draft"
	InvoiceStatusDue     = "due"
	InvoiceStatusPaid    = "paid"
	InvoiceStatusOverdue = "overdue"
)

// InvoiceItem 发票明细行
type InvoiceItem struct {
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
}

// Invoice 发票
type Invoice struct {
	ID            string        `json:"id"`
	InvoiceNumber int           `json:"invoice_number"` // 单调递增，max(existing)+1
	OrderID       string        `json:"order_id"`
	CustomerID    string        `json:"customer_id"`
	IssueDate     Time          `json:"issue_date"`
	DueDate       Time          `json:"due_date"`
	TotalAmount   int64         `json:"total_amount"`
	Status        string        `json:"status"`
	Items         []InvoiceItem `json:"items"`
}

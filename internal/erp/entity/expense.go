package entity

// ExpenseCategory 支出分类
const (
	ExpenseCategoryMaterials   = "materials"
	ExpenseCategorySalaries    = "salaries"
	ExpenseCategoryRent        = "rent"
	ExpenseCategoryUtilities   = "utilities"
	ExpenseCategoryMaintenance = "maintenance"
	ExpenseCategoryOther       = "other"
)

// ValidExpenseCategory 判断分类是否合法
func ValidExpenseCategory(c string) bool {
	switch c {
	case ExpenseCategoryMaterials, ExpenseCategorySalaries, ExpenseCategoryRent,
		ExpenseCategoryUtilities, ExpenseCategoryMaintenance, ExpenseCategoryOther:
		return true
	}
	return false
}

// Expense 支出记录，与订单无关，仅用于财务汇总
type Expense struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
	Category    string `json:"category"`
	Date        Time   `json:"date"`
}

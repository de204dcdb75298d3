package entity

// AccountRole 账号角色
const (
	AccountRoleAdmin    = "admin"
	AccountRoleOperator = "operator"
)

// UserAccount 本地账号，沿用旧版快照的明文口令存储形态
type UserAccount struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	CreatedAt Time   `json:"created_at"`
}

package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/moneerbcm20-rgb/decora-erp/internal/erp/entity"
	"go.uber.org/zap"
)

// 变更事件类型，经 SSE 推送给看板客户端
const (
	EventOrderCreated     = "order.created"
	EventOrderUpdated     = "order.updated"
	EventOrderDeleted     = "order.deleted"
	EventCustomerCreated  = "customer.created"
	EventCustomerDeleted  = "customer.deleted"
	EventInvoiceCreated   = "invoice.created"
	EventInvoiceUpdated   = "invoice.updated"
	EventReceiptCreated   = "receipt.created"
	EventExpenseChanged   = "expense.changed"
	EventSnapshotRestored = "snapshot.restored"
)

// Store 单一可变内存数据集，持有全部集合
// 所有操作在同一把锁内完成，等价于旧版单线程事件循环的原子性；
// 每次变更后写回本地快照文件（权威回退存储），写失败仅记日志不中断
type Store struct {
	mu     sync.Mutex
	path   string // 本地快照文件路径，空串表示纯内存（测试用）
	logger *zap.Logger
	data   entity.Snapshot

	// OnChange 变更钩子，持锁外调用
	OnChange func(event string, data interface{})
}

// Open 打开本地快照文件并载入数据集；文件不存在时从空数据集开始
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{path: path, logger: logger}
	if path == "" {
		return s, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("读取本地快照失败: %w", err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("解析本地快照失败: %w", err)
	}
	return s, nil
}

// saveLocked 原子写回本地快照文件，调用方须持锁
func (s *Store) saveLocked() {
	if s.path == "" {
		return
	}
	raw, err := json.MarshalIndent(&s.data, "", "  ")
	if err != nil {
		s.logger.Error("序列化本地快照失败", zap.Error(err))
		return
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		s.logger.Error("写本地快照临时文件失败", zap.Error(err))
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.logger.Error("替换本地快照文件失败", zap.Error(err))
	}
}

func (s *Store) emit(event string, data interface{}) {
	if s.OnChange != nil {
		s.OnChange(event, data)
	}
}

// Flush 立即写回本地快照（定时备份与优雅退出时调用）
func (s *Store) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveLocked()
}

// Path 本地快照文件路径
func (s *Store) Path() string {
	return s.path
}

// --- Customer ---

// ListCustomers 客户列表副本
func (s *Store) ListCustomers() []entity.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Customer, len(s.data.Customers))
	copy(out, s.data.Customers)
	return out
}

// GetCustomer 按ID查客户
func (s *Store) GetCustomer(id string) (*entity.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.Customers {
		if s.data.Customers[i].ID == id {
			c := s.data.Customers[i]
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

// CreateCustomer 创建客户并分配流水号 max(existing)+1
func (s *Store) CreateCustomer(c *entity.Customer) error {
	s.mu.Lock()
	maxSerial := 0
	for i := range s.data.Customers {
		if s.data.Customers[i].SerialNumber > maxSerial {
			maxSerial = s.data.Customers[i].SerialNumber
		}
	}
	c.SerialNumber = maxSerial + 1
	s.data.Customers = append(s.data.Customers, *c)
	s.saveLocked()
	s.mu.Unlock()
	s.emit(EventCustomerCreated, *c)
	return nil
}

// DeleteCustomer 删除客户；名下仍有订单（任意状态）时整体拒绝，数据不变
func (s *Store) DeleteCustomer(id string) error {
	s.mu.Lock()
	idx := -1
	for i := range s.data.Customers {
		if s.data.Customers[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	for i := range s.data.Orders {
		if s.data.Orders[i].CustomerID == id {
			s.mu.Unlock()
			return ErrCustomerHasOrders
		}
	}
	s.data.Customers = append(s.data.Customers[:idx], s.data.Customers[idx+1:]...)
	s.saveLocked()
	s.mu.Unlock()
	s.emit(EventCustomerDeleted, id)
	return nil
}

// --- Product ---

// ListProducts 产品目录副本
func (s *Store) ListProducts() []entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Product, len(s.data.Products))
	copy(out, s.data.Products)
	return out
}

// GetProduct 按ID查产品
func (s *Store) GetProduct(id string) (*entity.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.Products {
		if s.data.Products[i].ID == id {
			p := s.data.Products[i]
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

// CreateProduct 新增目录条目；目录不提供删除，只允许编辑
func (s *Store) CreateProduct(p *entity.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Products = append(s.data.Products, *p)
	s.saveLocked()
	return nil
}

// UpdateProduct 编辑目录条目
func (s *Store) UpdateProduct(p *entity.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.Products {
		if s.data.Products[i].ID == p.ID {
			s.data.Products[i] = *p
			s.saveLocked()
			return nil
		}
	}
	return ErrNotFound
}

// --- Order ---

// ListOrders 订单列表副本
func (s *Store) ListOrders() []entity.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Order, len(s.data.Orders))
	copy(out, s.data.Orders)
	return out
}

// GetOrder 按ID查订单
func (s *Store) GetOrder(id string) (*entity.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.Orders {
		if s.data.Orders[i].ID == id {
			o := s.data.Orders[i]
			return &o, nil
		}
	}
	return nil, ErrNotFound
}

// CreateOrder 写入新订单
func (s *Store) CreateOrder(o *entity.Order) error {
	s.mu.Lock()
	s.data.Orders = append(s.data.Orders, *o)
	s.saveLocked()
	s.mu.Unlock()
	s.emit(EventOrderCreated, *o)
	return nil
}

// UpdateOrder 整体更新订单
func (s *Store) UpdateOrder(o *entity.Order) error {
	s.mu.Lock()
	found := false
	for i := range s.data.Orders {
		if s.data.Orders[i].ID == o.ID {
			s.data.Orders[i] = *o
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.saveLocked()
	s.mu.Unlock()
	s.emit(EventOrderUpdated, *o)
	return nil
}

// DeleteOrder 管理员显式删除订单，级联删除其关联发票
// 收款单是只追加的审计流水，保留不动
func (s *Store) DeleteOrder(id string) error {
	s.mu.Lock()
	idx := -1
	for i := range s.data.Orders {
		if s.data.Orders[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.data.Orders = append(s.data.Orders[:idx], s.data.Orders[idx+1:]...)
	kept := s.data.Invoices[:0]
	for i := range s.data.Invoices {
		if s.data.Invoices[i].OrderID != id {
			kept = append(kept, s.data.Invoices[i])
		}
	}
	s.data.Invoices = kept
	s.saveLocked()
	s.mu.Unlock()
	s.emit(EventOrderDeleted, id)
	return nil
}

// --- Invoice ---

// ListInvoices 发票列表副本
func (s *Store) ListInvoices() []entity.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Invoice, len(s.data.Invoices))
	copy(out, s.data.Invoices)
	return out
}

// GetInvoice 按ID查发票
func (s *Store) GetInvoice(id string) (*entity.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.Invoices {
		if s.data.Invoices[i].ID == id {
			inv := s.data.Invoices[i]
			return &inv, nil
		}
	}
	return nil, ErrNotFound
}

// CreateInvoice 创建发票并分配单调递增票号
func (s *Store) CreateInvoice(inv *entity.Invoice) error {
	s.mu.Lock()
	maxNo := 0
	for i := range s.data.Invoices {
		if s.data.Invoices[i].InvoiceNumber > maxNo {
			maxNo = s.data.Invoices[i].InvoiceNumber
		}
	}
	inv.InvoiceNumber = maxNo + 1
	s.data.Invoices = append(s.data.Invoices, *inv)
	s.saveLocked()
	s.mu.Unlock()
	s.emit(EventInvoiceCreated, *inv)
	return nil
}

// UpdateInvoice 整体更新发票
func (s *Store) UpdateInvoice(inv *entity.Invoice) error {
	s.mu.Lock()
	found := false
	for i := range s.data.Invoices {
		if s.data.Invoices[i].ID == inv.ID {
			s.data.Invoices[i] = *inv
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.saveLocked()
	s.mu.Unlock()
	s.emit(EventInvoiceUpdated, *inv)
	return nil
}

// --- PaymentReceipt ---

// ListReceipts 收款单列表副本
func (s *Store) ListReceipts() []entity.PaymentReceipt {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.PaymentReceipt, len(s.data.PaymentReceipts))
	copy(out, s.data.PaymentReceipts)
	return out
}

// CreateReceipt 追加收款单并分配单调递增号
func (s *Store) CreateReceipt(r *entity.PaymentReceipt) error {
	s.mu.Lock()
	maxNo := 0
	for i := range s.data.PaymentReceipts {
		if s.data.PaymentReceipts[i].ReceiptNumber > maxNo {
			maxNo = s.data.PaymentReceipts[i].ReceiptNumber
		}
	}
	r.ReceiptNumber = maxNo + 1
	s.data.PaymentReceipts = append(s.data.PaymentReceipts, *r)
	s.saveLocked()
	s.mu.Unlock()
	s.emit(EventReceiptCreated, *r)
	return nil
}

// --- Expense ---

// ListExpenses 支出列表副本
func (s *Store) ListExpenses() []entity.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Expense, len(s.data.Expenses))
	copy(out, s.data.Expenses)
	return out
}

// CreateExpense 新增支出
func (s *Store) CreateExpense(e *entity.Expense) error {
	s.mu.Lock()
	s.data.Expenses = append(s.data.Expenses, *e)
	s.saveLocked()
	s.mu.Unlock()
	s.emit(EventExpenseChanged, *e)
	return nil
}

// DeleteExpense 删除支出
func (s *Store) DeleteExpense(id string) error {
	s.mu.Lock()
	idx := -1
	for i := range s.data.Expenses {
		if s.data.Expenses[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.data.Expenses = append(s.data.Expenses[:idx], s.data.Expenses[idx+1:]...)
	s.saveLocked()
	s.mu.Unlock()
	s.emit(EventExpenseChanged, id)
	return nil
}

// --- UserAccount ---

// FindAccountByUsername 按账号名查账号
func (s *Store) FindAccountByUsername(username string) (*entity.UserAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.UserAccounts {
		if s.data.UserAccounts[i].Username == username {
			a := s.data.UserAccounts[i]
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

// CreateAccount 新增账号，账号名重复时拒绝
func (s *Store) CreateAccount(a *entity.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.UserAccounts {
		if s.data.UserAccounts[i].Username == a.Username {
			return ErrDuplicateUsername
		}
	}
	s.data.UserAccounts = append(s.data.UserAccounts, *a)
	s.saveLocked()
	return nil
}

// --- Settings / Snapshot ---

// GetSettings 当前配置副本
func (s *Store) GetSettings() entity.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Settings
}

// UpdateSettings 更新配置
func (s *Store) UpdateSettings(set entity.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Settings = set
	s.saveLocked()
}

// Export 导出全量快照副本
func (s *Store) Export() entity.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSnapshot(&s.data)
}

// Replace 用快照整体替换全部集合（恢复），不做合并
func (s *Store) Replace(snap entity.Snapshot) {
	s.mu.Lock()
	s.data = cloneSnapshot(&snap)
	s.saveLocked()
	s.mu.Unlock()
	s.emit(EventSnapshotRestored, nil)
}

// cloneSnapshot 深拷贝快照（切片字段复制，避免外部别名篡改内部状态）
func cloneSnapshot(in *entity.Snapshot) entity.Snapshot {
	out := entity.Snapshot{Settings: in.Settings}
	if in.Settings.Offday != nil {
		d := *in.Settings.Offday
		out.Settings.Offday = &d
	}
	out.Customers = append([]entity.Customer(nil), in.Customers...)
	out.Expenses = append([]entity.Expense(nil), in.Expenses...)
	out.PaymentReceipts = append([]entity.PaymentReceipt(nil), in.PaymentReceipts...)
	out.UserAccounts = append([]entity.UserAccount(nil), in.UserAccounts...)
	out.Products = append([]entity.Product(nil), in.Products...)
	out.Orders = make([]entity.Order, len(in.Orders))
	for i := range in.Orders {
		o := in.Orders[i]
		o.Items = append([]entity.OrderItem(nil), in.Orders[i].Items...)
		out.Orders[i] = o
	}
	out.Invoices = make([]entity.Invoice, len(in.Invoices))
	for i := range in.Invoices {
		inv := in.Invoices[i]
		inv.Items = append([]entity.InvoiceItem(nil), in.Invoices[i].Items...)
		out.Invoices[i] = inv
	}
	return out
}

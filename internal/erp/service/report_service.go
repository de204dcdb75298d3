package service

import (
	"fmt"
	"time"

	"github.com/moneerbcm20-rgb/decora-erp/internal/erp/store"
	"github.com/xuri/excelize/v2"
)

// ReportService 对账单导出
type ReportService struct {
	store   *store.Store
	billing *BillingService
	now     func() time.Time
}

func NewReportService(st *store.Store, billing *BillingService) *ReportService {
	return &ReportService{store: st, billing: billing, now: time.Now}
}

var invoiceHeaders = []string{"票号", "客户", "开票日", "到期日", "金额", "状态"}
var receiptHeaders = []string{"收据号", "客户", "收款日", "金额", "备注"}
var expenseHeaders = []string{"日期", "分类", "说明", "金额"}

// ExportStatement 导出月度对账单 xlsx（发票、收款、支出 + 汇总）
func (s *ReportService) ExportStatement() (*excelize.File, string, error) {
	f := excelize.NewFile()

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})

	customers := make(map[string]string)
	for _, c := range s.store.ListCustomers() {
		customers[c.ID] = c.Name
	}

	writeHeaders := func(sheet string, headers []string) {
		for i, h := range headers {
			col, _ := excelize.ColumnNumberToName(i + 1)
			cell := col + "1"
			f.SetCellValue(sheet, cell, h)
			f.SetCellStyle(sheet, cell, cell, boldStyle)
		}
	}

	// 发票页
	sheet := "发票"
	f.SetSheetName("Sheet1", sheet)
	writeHeaders(sheet, invoiceHeaders)
	var invoiceTotal int64
	for i, inv := range s.store.ListInvoices() {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), inv.InvoiceNumber)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), customers[inv.CustomerID])
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), inv.IssueDate.Format("2006-01-02"))
		if !inv.DueDate.IsZero() {
			f.SetCellValue(sheet, fmt.Sprintf("D%d", row), inv.DueDate.Format("2006-01-02"))
		}
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), inv.TotalAmount)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), inv.Status)
		invoiceTotal += inv.TotalAmount
	}
	invSumRow := len(s.store.ListInvoices()) + 2
	f.SetCellValue(sheet, fmt.Sprintf("A%d", invSumRow), "汇总")
	f.SetCellValue(sheet, fmt.Sprintf("E%d", invSumRow), invoiceTotal)
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", invSumRow), fmt.Sprintf("F%d", invSumRow), summaryStyle)

	// 收款页
	sheet = "收款"
	f.NewSheet(sheet)
	writeHeaders(sheet, receiptHeaders)
	var receiptTotal int64
	receipts := s.store.ListReceipts()
	for i, r := range receipts {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.ReceiptNumber)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), customers[r.CustomerID])
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), r.PaymentDate.Format("2006-01-02"))
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), r.Amount)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), r.Notes)
		receiptTotal += r.Amount
	}
	recSumRow := len(receipts) + 2
	f.SetCellValue(sheet, fmt.Sprintf("A%d", recSumRow), "汇总")
	f.SetCellValue(sheet, fmt.Sprintf("D%d", recSumRow), receiptTotal)
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", recSumRow), fmt.Sprintf("E%d", recSumRow), summaryStyle)

	// 支出页
	sheet = "支出"
	f.NewSheet(sheet)
	writeHeaders(sheet, expenseHeaders)
	var expenseTotal int64
	expenses := s.store.ListExpenses()
	for i, e := range expenses {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), e.Date.Format("2006-01-02"))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), e.Category)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), e.Description)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), e.Amount)
		expenseTotal += e.Amount
	}
	expSumRow := len(expenses) + 2
	f.SetCellValue(sheet, fmt.Sprintf("A%d", expSumRow), "汇总")
	f.SetCellValue(sheet, fmt.Sprintf("D%d", expSumRow), expenseTotal)
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", expSumRow), fmt.Sprintf("D%d", expSumRow), summaryStyle)

	// 汇总页
	sheet = "汇总"
	f.NewSheet(sheet)
	sum := s.billing.Summary()
	rows := [][2]interface{}{
		{"收款合计", sum.Revenue},
		{"未收余额", sum.Outstanding},
		{"支出合计", sum.TotalExpenses},
		{"净额", sum.Net},
		{"活跃订单", sum.ActiveOrders},
		{"已交付订单", sum.DeliveredOrders},
	}
	for i, r := range rows {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", i+1), r[0])
		f.SetCellValue(sheet, fmt.Sprintf("B%d", i+1), r[1])
	}
	f.SetCellStyle(sheet, "A1", fmt.Sprintf("A%d", len(rows)), summaryStyle)

	filename := fmt.Sprintf("statement_%s.xlsx", s.now().Format("200601"))
	return f, filename, nil
}

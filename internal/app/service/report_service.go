package service

import (
	"fmt"
	"time"

	"github.com/nimoapp/nimo-backend/internal/app/model"
	"github.com/nimoapp/nimo-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ReportService builds the admin XLSX exports.
type ReportService interface {
	SalesReport(from, to time.Time) (*excelize.File, error)
}

type reportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) ReportService {
	return &reportService{db: db}
}

// SalesReport exports completed orders in the window, one row per order item,
// with a summary sheet of per-partner totals.
func (s *reportService) SalesReport(from, to time.Time) (*excelize.File, error) {
	var items []model.OrderItem
	err := s.db.
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status = ? AND orders.created_at BETWEEN ? AND ?",
			model.OrderStatusCompleted, from, to).
		Preload("Order").
		Preload("Product").
		Preload("Umkm").
		Order("order_items.created_at ASC").
		Find(&items).Error
	if err != nil {
		logger.Error("Failed to query sales for report", err, nil)
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "Penjualan"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{
		"Order ID", "Tanggal", "UMKM", "Produk", "Jumlah",
		"Harga Satuan", "Harga Asli", "Subtotal", "Penghematan",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	type partnerTotal struct {
		name    string
		revenue float64
		items   int
	}
	totals := make(map[uint]*partnerTotal)

	for i, item := range items {
		row := i + 2
		subtotal := item.Price * float64(item.Quantity)
		savings := (item.ListPrice - item.Price) * float64(item.Quantity)

		values := []interface{}{
			item.OrderID,
			item.Order.CreatedAt.Format("2006-01-02 15:04"),
			item.Umkm.BusinessName,
			item.Product.Name,
			item.Quantity,
			item.Price,
			item.ListPrice,
			subtotal,
			savings,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheet, cell, v)
		}

		t, ok := totals[item.UmkmID]
		if !ok {
			t = &partnerTotal{name: item.Umkm.BusinessName}
			totals[item.UmkmID] = t
		}
		t.revenue += subtotal
		t.items += item.Quantity
	}

	summary := "Ringkasan"
	if _, err := f.NewSheet(summary); err != nil {
		return nil, err
	}
	f.SetCellValue(summary, "A1", "UMKM")
	f.SetCellValue(summary, "B1", "Pendapatan")
	f.SetCellValue(summary, "C1", "Item Terselamatkan")
	row := 2
	for _, t := range totals {
		f.SetCellValue(summary, fmt.Sprintf("A%d", row), t.name)
		f.SetCellValue(summary, fmt.Sprintf("B%d", row), t.revenue)
		f.SetCellValue(summary, fmt.Sprintf("C%d", row), t.items)
		row++
	}

	logger.Info("Sales report generated", map[string]interface{}{
		"from":      from.Format("2006-01-02"),
		"to":        to.Format("2006-01-02"),
		"row_count": len(items),
	})
	return f, nil
}

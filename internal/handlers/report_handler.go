package handlers

import (
	"fmt"
	"net/http"

	"roti-erp/internal/apperr"
	"roti-erp/internal/logger"
	"roti-erp/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler exposes the read-only aggregations.
type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// --- GET: /api/reports/dashboard ---
func (h *ReportHandler) Dashboard(c *gin.Context) {
	d, err := h.reports.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// --- GET: /api/reports/sales?period&startDate&endDate&groupBy ---
func (h *ReportHandler) Sales(c *gin.Context) {
	var q services.SalesQuery
	if !bindQuery(c, &q) {
		return
	}
	report, err := h.reports.Sales(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// --- GET: /api/reports/sales/export ---
// Same query as Sales, delivered as a workbook with one sheet per section.
func (h *ReportHandler) ExportSales(c *gin.Context) {
	var q services.SalesQuery
	if !bindQuery(c, &q) {
		return
	}
	report, err := h.reports.Sales(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}

	f, err := salesWorkbook(report)
	if err != nil {
		respondError(c, apperr.Internal("Failed to build workbook", err))
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("sales_%s_%s.xlsx", report.Period.StartDate(), report.Period.EndDate())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		logger.FromGin(c).Error("Failed to write workbook", zap.String("file", filename), zap.Error(err))
	}
}

func salesWorkbook(r *services.SalesReport) (*excelize.File, error) {
	f := excelize.NewFile()

	// 1. Summary
	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return nil, err
	}
	s := r.Summary
	summary := [][]interface{}{
		{"Period", r.Period.Name},
		{"Start", r.Period.StartDate()},
		{"End (exclusive)", r.Period.EndDate()},
		{"Total sales", s.TotalSales.InexactFloat64()},
		{"Total orders", s.TotalOrders},
		{"Average order value", s.AverageOrderValue.InexactFloat64()},
		{"Order sales", s.OrderSales.InexactFloat64()},
		{"Order count", s.OrderCount},
		{"POS sales", s.POSSales.InexactFloat64()},
		{"POS count", s.POSCount},
	}
	if err := writeRows(f, "Summary", summary); err != nil {
		return nil, err
	}

	// 2. Chart series
	chart := [][]interface{}{{"Bucket (" + r.GroupBy + ")", "Total sales", "Orders", "Average order value"}}
	for _, p := range r.ChartData {
		chart = append(chart, []interface{}{p.Key, p.TotalSales.InexactFloat64(), p.TotalOrders, p.AverageOrderValue.InexactFloat64()})
	}
	if err := writeSheet(f, "Chart", chart); err != nil {
		return nil, err
	}

	// 3. Raw rows
	orders := [][]interface{}{{"Order number", "Created", "Counter", "Status", "Total", "Discount", "Tax", "Final"}}
	for _, o := range r.Orders {
		orders = append(orders, []interface{}{
			o.OrderNumber, o.CreatedAt.Format("2006-01-02 15:04"), o.CounterID, string(o.Status),
			o.TotalAmount.InexactFloat64(), o.Discount.InexactFloat64(), o.Tax.InexactFloat64(), o.FinalAmount.InexactFloat64(),
		})
	}
	if err := writeSheet(f, "Orders", orders); err != nil {
		return nil, err
	}

	pos := [][]interface{}{{"Transaction number", "Created", "Payment", "Total", "Discount", "Tax", "Final"}}
	for _, t := range r.POSTransactions {
		pos = append(pos, []interface{}{
			t.TransactionNumber, t.CreatedAt.Format("2006-01-02 15:04"), t.PaymentMethod,
			t.TotalAmount.InexactFloat64(), t.Discount.InexactFloat64(), t.Tax.InexactFloat64(), t.FinalAmount.InexactFloat64(),
		})
	}
	if err := writeSheet(f, "POS", pos); err != nil {
		return nil, err
	}
	return f, nil
}

func writeSheet(f *excelize.File, name string, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	return writeRows(f, name, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// --- GET: /api/reports/inventory?date= ---
func (h *ReportHandler) Inventory(c *gin.Context) {
	summary, err := h.reports.InventorySummary(c.Request.Context(), c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// --- GET: /api/reports/valuation ---
// Raw materials on hand at cost, grouped by category.
func (h *ReportHandler) Valuation(c *gin.Context) {
	v, err := h.reports.StockValuation(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// --- GET: /api/franchises/:id/summary?period= ---
func (h *ReportHandler) FranchiseSummary(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var q services.PeriodQuery
	if !bindQuery(c, &q) {
		return
	}
	summary, err := h.reports.FranchiseSummary(c.Request.Context(), id, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

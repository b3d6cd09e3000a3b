package handlers

import (
	"fmt"
	"net/http"
	"time"

	"roti-erp/internal/apperr"
	"roti-erp/internal/logger"
	"roti-erp/internal/middleware"
	"roti-erp/internal/models"
	"roti-erp/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ExpenseDecision struct {
	Status string `json:"status" binding:"omitempty,oneof=APPROVED REJECTED"`
}

// FinanceHandler owns expense approval and the P&L view; expenses are
// otherwise a generic resource whose status only moves through Approve.
type FinanceHandler struct {
	Expenses *Resource[models.Expense, *models.Expense]
	db       *gorm.DB
	reports  *services.ReportService
	clock    func() time.Time
}

func NewFinanceHandler(db *gorm.DB, reports *services.ReportService, clock func() time.Time) *FinanceHandler {
	if clock == nil {
		clock = time.Now
	}
	r := NewResource[models.Expense](db, "expense")
	r.Filters = map[string]string{"status": "status", "category": "category", "accountId": "account_id"}
	r.Prepare = prepareExpense
	return &FinanceHandler{Expenses: r, db: db, reports: reports, clock: clock}
}

func prepareExpense(c *gin.Context, item, existing *models.Expense) error {
	if !item.Amount.IsPositive() {
		return apperr.Field("amount", "must be greater than 0")
	}
	if existing == nil {
		item.Status = models.ExpensePending
		item.CreatedBy = middleware.CurrentUserID(c)
		item.ApprovedBy = nil
		item.ApprovedAt = nil
		return nil
	}
	item.Status = existing.Status
	item.CreatedBy = existing.CreatedBy
	item.ApprovedBy = existing.ApprovedBy
	item.ApprovedAt = existing.ApprovedAt
	return nil
}

// --- PUT: /api/finance/expenses/:id/approve ---
func (h *FinanceHandler) Approve(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input ExpenseDecision
	if c.Request.ContentLength > 0 && !bindJSON(c, &input) {
		return
	}
	status := input.Status
	if status == "" {
		status = models.ExpenseApproved
	}

	var expense models.Expense
	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&expense, id).Error; err != nil {
			return err
		}
		if expense.Status != models.ExpensePending {
			return apperr.Validation(fmt.Sprintf("Expense is already %s", expense.Status))
		}
		now := h.clock()
		approver := middleware.CurrentUserID(c)
		if err := tx.Model(&expense).Updates(map[string]interface{}{
			"status":      status,
			"approved_by": approver,
			"approved_at": now,
		}).Error; err != nil {
			return err
		}
		expense.Status = status
		expense.ApprovedBy = &approver
		expense.ApprovedAt = &now
		return nil
	})
	if err != nil {
		respondError(c, apperr.FromDB(err, "expense"))
		return
	}

	logger.FromGin(c).Info("Expense decided", zap.Uint("expense_id", id), zap.String("status", status))
	c.JSON(http.StatusOK, expense)
}

// --- GET: /api/finance/profit-loss?period= ---
func (h *FinanceHandler) ProfitLoss(c *gin.Context) {
	var q services.PeriodQuery
	if !bindQuery(c, &q) {
		return
	}
	pl, err := h.reports.ProfitLoss(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pl)
}

package handlers

import (
	"net/http"
	"time"

	"roti-erp/internal/apperr"
	"roti-erp/internal/middleware"
	"roti-erp/internal/models"
	"roti-erp/internal/services"

	"github.com/gin-gonic/gin"
)

type orderListQuery struct {
	services.PeriodQuery
	pageQuery
	Status    string `form:"status"`
	CounterID uint   `form:"counterId"`
}

type posListQuery struct {
	services.PeriodQuery
	pageQuery
}

// OrderHandler serves /orders and /pos/transactions.
type OrderHandler struct {
	orders  *services.OrderService
	pos     *services.POSService
	reports *services.ReportService
}

func NewOrderHandler(orders *services.OrderService, pos *services.POSService, reports *services.ReportService) *OrderHandler {
	return &OrderHandler{orders: orders, pos: pos, reports: reports}
}

// --- POST: /api/orders ---
func (h *OrderHandler) Create(c *gin.Context) {
	var input services.CreateOrderInput
	if !bindJSON(c, &input) {
		return
	}
	order, err := h.orders.Create(c.Request.Context(), middleware.CurrentUserID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// --- GET: /api/orders ---
func (h *OrderHandler) List(c *gin.Context) {
	var q orderListQuery
	if !bindQuery(c, &q) {
		return
	}
	filter := services.OrderFilter{CounterID: q.CounterID, Limit: q.limit(), Offset: q.Offset}
	if q.Status != "" {
		status, ok := models.ParseOrderStatus(q.Status)
		if !ok {
			respondError(c, apperr.Field("status", "is not a known order status"))
			return
		}
		filter.Status = status
	}
	if q.Period != "" || q.StartDate != "" || q.EndDate != "" {
		p, err := h.reports.Resolve(q.PeriodQuery)
		if err != nil {
			respondError(c, err)
			return
		}
		filter.From, filter.To = p.Start, p.End
	}

	orders, total, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listBody(orders, total, q.pageQuery))
}

// --- GET: /api/orders/:id ---
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// --- PUT: /api/orders/:id ---
func (h *OrderHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input services.UpdateOrderInput
	if !bindJSON(c, &input) {
		return
	}
	order, err := h.orders.Update(c.Request.Context(), middleware.CurrentUserID(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// --- DELETE: /api/orders/:id ---
func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.orders.Delete(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted"})
}

// --- POST: /api/pos/transactions ---
func (h *OrderHandler) CreatePOS(c *gin.Context) {
	var input services.CreatePOSInput
	if !bindJSON(c, &input) {
		return
	}
	txn, err := h.pos.Create(c.Request.Context(), middleware.CurrentUserID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, txn)
}

// --- GET: /api/pos/transactions ---
func (h *OrderHandler) ListPOS(c *gin.Context) {
	var q posListQuery
	if !bindQuery(c, &q) {
		return
	}
	var from, to time.Time
	if q.Period != "" || q.StartDate != "" || q.EndDate != "" {
		p, err := h.reports.Resolve(q.PeriodQuery)
		if err != nil {
			respondError(c, err)
			return
		}
		from, to = p.Start, p.End
	}
	rows, total, err := h.pos.List(c.Request.Context(), from, to, q.limit(), q.Offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listBody(rows, total, q.pageQuery))
}

// --- GET: /api/pos/transactions/:id ---
func (h *OrderHandler) GetPOS(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	txn, err := h.pos.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

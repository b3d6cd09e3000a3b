package handlers

import (
	"net/http"

	"roti-erp/internal/middleware"
	"roti-erp/internal/models"
	"roti-erp/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CounterHandler is the counter resource plus its daily packet ledger.
type CounterHandler struct {
	*Resource[models.Counter, *models.Counter]
	inventory *services.InventoryService
}

func NewCounterHandler(db *gorm.DB, inventory *services.InventoryService) *CounterHandler {
	r := NewResource[models.Counter](db, "counter")
	r.IDParam = "counterId"
	r.Filters = map[string]string{"isActive": "is_active", "franchiseId": "franchise_id"}
	return &CounterHandler{Resource: r, inventory: inventory}
}

// --- GET: /api/counters/:counterId/inventory?date= ---
func (h *CounterHandler) Inventory(c *gin.Context) {
	counterID, ok := idParam(c, "counterId")
	if !ok {
		return
	}
	date := c.Query("date")
	rows, err := h.inventory.DailyInventory(c.Request.Context(), counterID, date)
	if err != nil {
		respondError(c, err)
		return
	}
	if date == "" {
		date = h.inventory.Today()
	}
	c.JSON(http.StatusOK, gin.H{"counterId": counterID, "date": date, "inventory": rows})
}

// --- POST: /api/counters/:counterId/orders ---
func (h *CounterHandler) Deliver(c *gin.Context) {
	counterID, ok := idParam(c, "counterId")
	if !ok {
		return
	}
	var input services.DeliveryInput
	if !bindJSON(c, &input) {
		return
	}
	res, err := h.inventory.RecordDelivery(c.Request.Context(), counterID, middleware.CurrentUserID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// --- GET: /api/counters/:counterId/orders ---
func (h *CounterHandler) Deliveries(c *gin.Context) {
	counterID, ok := idParam(c, "counterId")
	if !ok {
		return
	}
	var page pageQuery
	if !bindQuery(c, &page) {
		return
	}
	orders, err := h.inventory.ListCounterOrders(c.Request.Context(), counterID, page.limit(), page.Offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// --- POST: /api/counters/:counterId/sales ---
func (h *CounterHandler) Sell(c *gin.Context) {
	counterID, ok := idParam(c, "counterId")
	if !ok {
		return
	}
	var input services.SaleInput
	if !bindJSON(c, &input) {
		return
	}
	rows, err := h.inventory.RecordSale(c.Request.Context(), counterID, middleware.CurrentUserID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"counterId": counterID, "date": h.inventory.Today(), "inventory": rows})
}

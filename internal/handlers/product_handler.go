package handlers

import (
	"net/http"

	"roti-erp/internal/apperr"
	"roti-erp/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ProductHandler is the generic product resource with a delete that keeps
// history intact.
type ProductHandler struct {
	*Resource[models.Product, *models.Product]
	db *gorm.DB
}

func NewProductHandler(db *gorm.DB) *ProductHandler {
	r := NewResource[models.Product](db, "product")
	r.Filters = map[string]string{"category": "category", "isActive": "is_active", "sku": "sku"}
	return &ProductHandler{Resource: r, db: db}
}

// --- DELETE: Remove a product ---
// A product that appears on an order, a POS sale or a production batch is
// deactivated instead, so past documents keep resolving.
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	db := h.db.WithContext(c.Request.Context())

	var product models.Product
	if err := db.First(&product, id).Error; err != nil {
		respondError(c, apperr.FromDB(err, "product"))
		return
	}

	referenced, err := productReferenced(db, id)
	if err != nil {
		respondError(c, apperr.FromDB(err, "product"))
		return
	}
	if referenced {
		if err := db.Model(&product).Update("is_active", false).Error; err != nil {
			respondError(c, apperr.FromDB(err, "product"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product is in use and was deactivated", "softDeleted": true})
		return
	}

	if err := db.Delete(&product).Error; err != nil {
		respondError(c, apperr.FromDB(err, "product"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully", "softDeleted": false})
}

func productReferenced(db *gorm.DB, id uint) (bool, error) {
	for _, table := range []interface{}{&models.OrderItem{}, &models.POSTransactionItem{}, &models.ProductionBatch{}} {
		var n int64
		if err := db.Model(table).Where("product_id = ?", id).Count(&n).Error; err != nil {
			return false, err
		}
		if n > 0 {
			return true, nil
		}
	}
	return false, nil
}

package services

import (
	"errors"
	"fmt"

	"roti-erp/internal/apperr"
	"roti-erp/internal/models"

	"gorm.io/gorm"
)

// activeCounter loads a counter and fails with NotFound when it is missing or
// deactivated.
func activeCounter(tx *gorm.DB, id uint) (*models.Counter, error) {
	var counter models.Counter
	if err := tx.First(&counter, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Counter %d not found", id)
		}
		return nil, err
	}
	if !counter.IsActive {
		return nil, apperr.NotFound("Counter %d is not active", id)
	}
	return &counter, nil
}

func customerExists(tx *gorm.DB, id uint) error {
	var n int64
	if err := tx.Model(&models.Customer{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("Customer %d not found", id)
	}
	return nil
}

// checkProducts verifies every line references an active product and names
// the first offending productId.
func checkProducts(tx *gorm.DB, lines []LineInput) error {
	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	var products []models.Product
	if err := tx.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return err
	}
	active := make(map[uint]bool, len(products))
	for _, p := range products {
		active[p.ID] = p.IsActive
	}
	for i, l := range lines {
		if !active[l.ProductID] {
			return apperr.Validation(
				fmt.Sprintf("Invalid product %d", l.ProductID),
				apperr.FieldError{
					Field:   fmt.Sprintf("items[%d].productId", i),
					Message: fmt.Sprintf("product %d does not exist or is inactive", l.ProductID),
				},
			)
		}
	}
	return nil
}

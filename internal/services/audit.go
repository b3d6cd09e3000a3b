package services

import (
	"encoding/json"

	"roti-erp/internal/models"

	"gorm.io/gorm"
)

// recordAudit writes an audit row inside the caller's transaction.
func recordAudit(tx *gorm.DB, userID uint, action, entity string, entityID uint, details any) error {
	var text string
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			return err
		}
		text = string(b)
	}
	return tx.Create(&models.AuditLog{
		UserID:   userID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Details:  text,
	}).Error
}

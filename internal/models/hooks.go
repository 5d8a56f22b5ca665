package models

import (
	"faktura/internal/events"

	"gorm.io/gorm"
)

func (i *BusinessInvite) AfterCreate(tx *gorm.DB) error {
	log.Info("Business invite created %v", i)
	events.Emit("invite.created", i)
	return nil
}

func (i *Invoice) AfterUpdate(tx *gorm.DB) error {
	events.Emit("invoice.status_changed", i)
	return nil
}

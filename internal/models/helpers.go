package models

import (
	"gorm.io/gorm"
)

// GetBusinessByName retrieves a business from the database by its name
func GetBusinessByName(name string, db *gorm.DB) (*Business, error) {
	business := &Business{}
	if err := db.Where("name = ? AND is_deleted = false", name).First(business).Error; err != nil {
		return nil, err
	}
	return business, nil
}

func GetFileByID(id string, db *gorm.DB) (*File, error) {
	file := &File{}
	if err := db.Where("id = ? AND is_deleted = false", id).First(file).Error; err != nil {
		return nil, err
	}
	return file, nil
}

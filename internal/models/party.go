package models

import "time"

// Inspector is reference data for a field inspector.
// ServiceAreas is a JSON array of community names the inspector covers.
type Inspector struct {
	ID           string `gorm:"primaryKey;size:32"`
	Name         string `gorm:"size:64;not null;uniqueIndex"`
	Phone        string `gorm:"size:32"`
	Email        string `gorm:"size:128"`
	ServiceAreas string `gorm:"type:json"`
	Active       bool   `gorm:"default:true;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Builder is reference data for a home builder organization.
// Communities is a JSON array of community names the builder operates in.
type Builder struct {
	ID          string `gorm:"primaryKey;size:32"`
	Name        string `gorm:"size:64;not null;uniqueIndex"`
	Company     string `gorm:"size:128"`
	Phone       string `gorm:"size:32"`
	Email       string `gorm:"size:128"`
	Communities string `gorm:"type:json"`
	Active      bool   `gorm:"default:true;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

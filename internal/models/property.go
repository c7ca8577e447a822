package models

import "time"

// Property is a house under construction, tracked through inspection stages.
type Property struct {
	ID           string `gorm:"primaryKey;size:32"`
	Address      string `gorm:"size:256;not null"`
	Community    string `gorm:"size:64;index"`
	PlanNumber   string `gorm:"size:32"`
	BuilderID    string `gorm:"size:32;index"`
	Stage        string `gorm:"size:16;default:pre-rock;index"`
	Status       string `gorm:"size:16;default:pending;index"`
	ClosingDate  *time.Time
	ContactName  string `gorm:"size:64"`
	ContactPhone string `gorm:"size:32"`
	Notes        string `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Inspections []Inspection `gorm:"foreignKey:PropertyID"`
	Documents   []Document   `gorm:"foreignKey:PropertyID"`
	Photos      []Photo      `gorm:"foreignKey:PropertyID"`
}

// Document is uploaded paperwork (certificate, report) attached to a property.
// Only metadata and the storage URL live here; blob storage is external.
type Document struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	PropertyID string `gorm:"size:32;index;not null"`
	Name       string `gorm:"size:128;not null"`
	Kind       string `gorm:"size:16;default:report"`
	URL        string `gorm:"size:512"`
	UploadedBy string `gorm:"size:64"`
	CreatedAt  time.Time
}

// Photo is raw media attached to a property.
type Photo struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	PropertyID string `gorm:"size:32;index;not null"`
	Caption    string `gorm:"size:256"`
	URL        string `gorm:"size:512;not null"`
	CreatedAt  time.Time
}

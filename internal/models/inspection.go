package models

import "time"

// Inspection is a single inspection event tied to one property.
// The inspector fields are a denormalized snapshot taken at assignment time,
// not a foreign key: reassigning or deactivating an inspector later must not
// rewrite history.
type Inspection struct {
	ID             string    `gorm:"primaryKey;size:32"`
	PropertyID     string    `gorm:"size:32;index;not null"`
	Type           string    `gorm:"size:16;not null"`
	Status         string    `gorm:"size:16;default:scheduled;index"`
	ScheduledAt    time.Time `gorm:"index"`
	CompletedAt    *time.Time
	InspectorName  string `gorm:"size:64"`
	InspectorPhone string `gorm:"size:32"`
	InspectorEmail string `gorm:"size:128"`
	Notes          string `gorm:"type:text"`
	ReportURL      string `gorm:"size:512"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Property *Property `gorm:"foreignKey:PropertyID"`
	Issues   []Issue   `gorm:"foreignKey:InspectionID"`
}

// Issue is a defect recorded against a failed or in-progress inspection.
type Issue struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	InspectionID string `gorm:"size:32;index;not null"`
	Description  string `gorm:"type:text;not null"`
	Severity     string `gorm:"size:8;default:medium"`
	Location     string `gorm:"size:128"`
	PhotoURLs    string `gorm:"type:text"`
	Resolved     bool   `gorm:"default:false;index"`
	ResolvedBy   string `gorm:"size:64"`
	ResolvedAt   *time.Time
	CreatedAt    time.Time
}

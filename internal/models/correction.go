package models

import "time"

// CorrectionRequest is a builder's remediation submission for one issue found
// by a failed inspection. Rejection is terminal for the submission, not the
// issue: the builder resubmits a fresh request.
type CorrectionRequest struct {
	ID           string `gorm:"primaryKey;size:32"`
	PropertyID   string `gorm:"size:32;index;not null"`
	InspectionID string `gorm:"size:32;index;not null"`
	IssueID      uint   `gorm:"index;not null"`
	BuilderNotes string `gorm:"type:text"`
	PhotoURLs    string `gorm:"type:text"`
	Status       string `gorm:"size:16;default:pending;index"`
	SubmittedBy  string `gorm:"size:64"`
	SubmittedAt  time.Time
	ReviewedBy   string `gorm:"size:64"`
	ReviewedAt   *time.Time
	ReviewNotes  string `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Property   *Property   `gorm:"foreignKey:PropertyID"`
	Inspection *Inspection `gorm:"foreignKey:InspectionID"`
	Issue      *Issue      `gorm:"foreignKey:IssueID"`
}

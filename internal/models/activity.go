package models

import "time"

// Activity is one entry in the informational activity feed. It is a derived
// projection over the property/inspection/correction tables, never consulted
// by the state machines themselves.
type Activity struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	PropertyID string    `gorm:"size:32;index"`
	Kind       string    `gorm:"size:32;not null"`
	Actor      string    `gorm:"size:64"`
	Summary    string    `gorm:"size:256;not null"`
	Detail     string    `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"index"`
}

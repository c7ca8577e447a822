// Package activity maintains the informational activity feed.
package activity

import (
	"fmt"
	"log"

	"github.com/systemhause/hause/internal/models"
	"gorm.io/gorm"
)

// Feed entry kinds.
const (
	KindPropertyRegistered  = "property_registered"
	KindInspectionScheduled = "inspection_scheduled"
	KindInspectionStarted   = "inspection_started"
	KindInspectionPassed    = "inspection_passed"
	KindInspectionFailed    = "inspection_failed"
	KindInspectionCancelled = "inspection_cancelled"
	KindStageAdvanced       = "stage_advanced"
	KindCorrectionSubmitted = "correction_submitted"
	KindCorrectionApproved  = "correction_approved"
	KindCorrectionRejected  = "correction_rejected"
	KindDocumentAdded       = "document_added"
)

// Record appends a feed entry. The feed is informational, never authoritative:
// a failure to record is logged and swallowed so it cannot fail the
// transition that triggered it.
func Record(gdb *gorm.DB, propertyID, kind, actor, summary, detail string) {
	entry := models.Activity{
		PropertyID: propertyID,
		Kind:       kind,
		Actor:      actor,
		Summary:    summary,
		Detail:     detail,
	}
	if err := gdb.Create(&entry).Error; err != nil {
		log.Printf("activity: record %s for %s: %v", kind, propertyID, err)
	}
}

// Recent returns the newest feed entries across all properties.
func Recent(gdb *gorm.DB, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []models.Activity
	if err := gdb.Order("created_at DESC, id DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("activity: recent: %w", err)
	}
	return entries, nil
}

// ForProperty returns the feed entries for one property, newest first.
func ForProperty(gdb *gorm.DB, propertyID string, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []models.Activity
	if err := gdb.Where("property_id = ?", propertyID).
		Order("created_at DESC, id DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("activity: for property %s: %w", propertyID, err)
	}
	return entries, nil
}

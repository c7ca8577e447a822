// Package inspection provides inspection scheduling and lifecycle operations.
package inspection

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/systemhause/hause/internal/activity"
	"github.com/systemhause/hause/internal/db"
	"github.com/systemhause/hause/internal/models"
	"github.com/systemhause/hause/internal/property"
	"gorm.io/gorm"
)

// Inspection statuses.
const (
	StatusScheduled  = "scheduled"
	StatusInProgress = "in-progress"
	StatusPassed     = "passed"
	StatusFailed     = "failed"
	StatusCancelled  = "cancelled"
)

// ValidTransitions maps each inspection status to its valid next statuses.
// passed, failed, and cancelled are terminal.
var ValidTransitions = map[string][]string{
	StatusScheduled:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusPassed, StatusFailed, StatusCancelled},
}

// ScheduleOpts holds parameters for scheduling a new inspection.
type ScheduleOpts struct {
	PropertyID     string
	Type           string
	At             time.Time
	InspectorName  string
	InspectorPhone string
	InspectorEmail string
	Notes          string
}

// ListFilters holds optional filters for listing inspections.
type ListFilters struct {
	PropertyID    string
	Status        string
	Type          string
	InspectorName string
}

// IssueInput describes one defect recorded when failing an inspection.
type IssueInput struct {
	Description string
	Severity    string
	Location    string
	PhotoURLs   []string
}

// Schedule creates an inspection for the property's current stage and moves
// the property to scheduled. The inspection type must be valid for the stage,
// otherwise property.ErrInvalidStageTransition is returned.
func Schedule(gdb *gorm.DB, opts ScheduleOpts) (*models.Inspection, error) {
	if opts.PropertyID == "" {
		return nil, fmt.Errorf("inspection: property ID is required: %w", property.ErrValidation)
	}
	if opts.Type == "" {
		return nil, fmt.Errorf("inspection: type is required: %w", property.ErrValidation)
	}
	if opts.At.IsZero() {
		return nil, fmt.Errorf("inspection: scheduled time is required: %w", property.ErrValidation)
	}

	id, err := db.GenerateID("insp")
	if err != nil {
		return nil, err
	}

	ins := models.Inspection{
		ID:             id,
		PropertyID:     opts.PropertyID,
		Type:           opts.Type,
		Status:         StatusScheduled,
		ScheduledAt:    opts.At,
		InspectorName:  opts.InspectorName,
		InspectorPhone: opts.InspectorPhone,
		InspectorEmail: opts.InspectorEmail,
		Notes:          opts.Notes,
	}

	err = gdb.Transaction(func(tx *gorm.DB) error {
		if _, _, err := property.Apply(tx, opts.PropertyID, property.EventScheduled, opts.Type); err != nil {
			return err
		}
		if err := tx.Create(&ins).Error; err != nil {
			return fmt.Errorf("inspection: create: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	activity.Record(gdb, opts.PropertyID, activity.KindInspectionScheduled, opts.InspectorName,
		fmt.Sprintf("%s inspection scheduled for %s", opts.Type, opts.At.Format("2006-01-02 15:04")), ins.ID)
	return &ins, nil
}

// Start marks a scheduled inspection in-progress.
func Start(gdb *gorm.DB, id string) (*models.Inspection, error) {
	return transition(gdb, id, StatusInProgress, func(tx *gorm.DB, ins *models.Inspection) error {
		_, _, err := property.Apply(tx, ins.PropertyID, property.EventStarted, ins.Type)
		return err
	})
}

// Pass completes an inspection as passed and advances the property through
// the stage machine. CompletedAt is set to now.
func Pass(gdb *gorm.DB, id, reportURL, notes string) (*models.Inspection, error) {
	var advanced bool
	var newStage string

	ins, err := transition(gdb, id, StatusPassed, func(tx *gorm.DB, ins *models.Inspection) error {
		before, after, err := property.Apply(tx, ins.PropertyID, property.EventPassed, ins.Type)
		if err != nil {
			return err
		}
		advanced = after.Stage != before.Stage
		newStage = after.Stage

		updates := map[string]interface{}{}
		if reportURL != "" {
			updates["report_url"] = reportURL
		}
		if notes != "" {
			updates["notes"] = notes
		}
		if len(updates) > 0 {
			if err := tx.Model(&models.Inspection{}).Where("id = ?", ins.ID).Updates(updates).Error; err != nil {
				return fmt.Errorf("inspection: record pass details for %s: %w", ins.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	activity.Record(gdb, ins.PropertyID, activity.KindInspectionPassed, ins.InspectorName,
		fmt.Sprintf("%s inspection passed", ins.Type), ins.ID)
	if advanced {
		activity.Record(gdb, ins.PropertyID, activity.KindStageAdvanced, ins.InspectorName,
			fmt.Sprintf("property advanced to %s", newStage), ins.ID)
	}
	return ins, nil
}

// Fail completes an inspection as failed, recording at least one issue. The
// property status goes to failed and its stage is frozen. No correction
// request is created here: corrections are always builder-initiated.
func Fail(gdb *gorm.DB, id string, issues []IssueInput) (*models.Inspection, error) {
	if len(issues) == 0 {
		return nil, fmt.Errorf("inspection: failing requires at least one issue: %w", property.ErrValidation)
	}
	for i, iss := range issues {
		if iss.Description == "" {
			return nil, fmt.Errorf("inspection: issues[%d].description is required: %w", i, property.ErrValidation)
		}
	}

	ins, err := transition(gdb, id, StatusFailed, func(tx *gorm.DB, ins *models.Inspection) error {
		if _, _, err := property.Apply(tx, ins.PropertyID, property.EventFailed, ins.Type); err != nil {
			return err
		}
		for _, iss := range issues {
			photos, err := json.Marshal(iss.PhotoURLs)
			if err != nil {
				return fmt.Errorf("inspection: marshal issue photos: %w", err)
			}
			row := models.Issue{
				InspectionID: ins.ID,
				Description:  iss.Description,
				Severity:     iss.Severity,
				Location:     iss.Location,
				PhotoURLs:    string(photos),
			}
			if row.Severity == "" {
				row.Severity = "medium"
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("inspection: record issue for %s: %w", ins.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	activity.Record(gdb, ins.PropertyID, activity.KindInspectionFailed, ins.InspectorName,
		fmt.Sprintf("%s inspection failed with %d issue(s)", ins.Type, len(issues)), ins.ID)
	return ins, nil
}

// Cancel terminates an inspection without a completion artifact: CompletedAt
// stays unset and the property returns to pending at its current stage.
func Cancel(gdb *gorm.DB, id string) (*models.Inspection, error) {
	ins, err := transition(gdb, id, StatusCancelled, func(tx *gorm.DB, ins *models.Inspection) error {
		_, _, err := property.Apply(tx, ins.PropertyID, property.EventCancelled, ins.Type)
		return err
	})
	if err != nil {
		return nil, err
	}

	activity.Record(gdb, ins.PropertyID, activity.KindInspectionCancelled, ins.InspectorName,
		fmt.Sprintf("%s inspection cancelled", ins.Type), ins.ID)
	return ins, nil
}

// ScheduleFollowUp books a follow-up inspection re-checking a failed one,
// copying its inspector snapshot. Used after a correction request is approved.
func ScheduleFollowUp(gdb *gorm.DB, failedInspectionID string, at time.Time) (*models.Inspection, error) {
	failed, err := Get(gdb, failedInspectionID)
	if err != nil {
		return nil, err
	}
	if failed.Status != StatusFailed {
		return nil, fmt.Errorf("inspection: %s is %s, follow-ups re-check failed inspections: %w",
			failedInspectionID, failed.Status, property.ErrValidation)
	}
	return Schedule(gdb, ScheduleOpts{
		PropertyID:     failed.PropertyID,
		Type:           property.TypeFollowUp,
		At:             at,
		InspectorName:  failed.InspectorName,
		InspectorPhone: failed.InspectorPhone,
		InspectorEmail: failed.InspectorEmail,
	})
}

// Get retrieves an inspection by ID, preloading its issues.
func Get(gdb *gorm.DB, id string) (*models.Inspection, error) {
	var ins models.Inspection
	if err := gdb.Preload("Issues").Where("id = ?", id).First(&ins).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("inspection: not found: %s", id)
		}
		return nil, fmt.Errorf("inspection: get %s: %w", id, err)
	}
	return &ins, nil
}

// List returns inspections matching the given filters, ordered by scheduled
// time.
func List(gdb *gorm.DB, filters ListFilters) ([]models.Inspection, error) {
	q := gdb.Model(&models.Inspection{})

	if filters.PropertyID != "" {
		q = q.Where("property_id = ?", filters.PropertyID)
	}
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	if filters.Type != "" {
		q = q.Where("type = ?", filters.Type)
	}
	if filters.InspectorName != "" {
		q = q.Where("inspector_name = ?", filters.InspectorName)
	}

	var inspections []models.Inspection
	if err := q.Order("scheduled_at ASC, id ASC").Find(&inspections).Error; err != nil {
		return nil, fmt.Errorf("inspection: list: %w", err)
	}
	return inspections, nil
}

// isValidTransition checks whether an inspection status transition is allowed.
func isValidTransition(from, to string) bool {
	for _, v := range ValidTransitions[from] {
		if v == to {
			return true
		}
	}
	return false
}

// transition atomically moves an inspection to newStatus, running apply
// inside the same transaction for the property-side effects. CompletedAt is
// set exactly when the new status is passed or failed.
func transition(gdb *gorm.DB, id, newStatus string, apply func(tx *gorm.DB, ins *models.Inspection) error) (*models.Inspection, error) {
	var ins models.Inspection

	err := gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&ins).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("inspection: not found: %s", id)
			}
			return fmt.Errorf("inspection: get %s: %w", id, err)
		}

		if !isValidTransition(ins.Status, newStatus) {
			valid := ValidTransitions[ins.Status]
			return fmt.Errorf("inspection: invalid status transition from %q to %q; valid transitions: %v", ins.Status, newStatus, valid)
		}

		if err := apply(tx, &ins); err != nil {
			return err
		}

		updates := map[string]interface{}{"status": newStatus}
		if newStatus == StatusPassed || newStatus == StatusFailed {
			now := time.Now()
			updates["completed_at"] = now
			ins.CompletedAt = &now
		}
		if err := tx.Model(&models.Inspection{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("inspection: update %s: %w", id, err)
		}
		ins.Status = newStatus
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ins, nil
}

// Package property provides the property registry and the stage/status
// state machine driven by inspection outcomes.
package property

import (
	"errors"
	"fmt"
	"time"

	"github.com/systemhause/hause/internal/db"
	"github.com/systemhause/hause/internal/models"
	"gorm.io/gorm"
)

// RegisterOpts holds parameters for registering a new property.
type RegisterOpts struct {
	Address      string
	Community    string
	PlanNumber   string
	BuilderID    string
	ContactName  string
	ContactPhone string
	Notes        string
	ClosingDate  *time.Time
}

// ListFilters holds optional filters for listing properties.
type ListFilters struct {
	Community string
	Stage     string
	Status    string
	BuilderID string
}

// StageCount holds a stage and its property count for summaries.
type StageCount struct {
	Stage string
	Count int
}

// Register creates a new property at stage pre-rock, status pending.
func Register(gdb *gorm.DB, opts RegisterOpts) (*models.Property, error) {
	if opts.Address == "" {
		return nil, fmt.Errorf("property: address is required: %w", ErrValidation)
	}
	if opts.Community == "" {
		return nil, fmt.Errorf("property: community is required: %w", ErrValidation)
	}

	if opts.BuilderID != "" {
		var count int64
		if err := gdb.Model(&models.Builder{}).Where("id = ?", opts.BuilderID).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("property: check builder %s: %w", opts.BuilderID, err)
		}
		if count == 0 {
			return nil, fmt.Errorf("property: builder not found: %s", opts.BuilderID)
		}
	}

	id, err := db.GenerateID("prop")
	if err != nil {
		return nil, err
	}

	prop := models.Property{
		ID:           id,
		Address:      opts.Address,
		Community:    opts.Community,
		PlanNumber:   opts.PlanNumber,
		BuilderID:    opts.BuilderID,
		Stage:        StagePreRock,
		Status:       StatusPending,
		ContactName:  opts.ContactName,
		ContactPhone: opts.ContactPhone,
		Notes:        opts.Notes,
		ClosingDate:  opts.ClosingDate,
	}

	if err := gdb.Create(&prop).Error; err != nil {
		return nil, fmt.Errorf("property: register: %w", err)
	}
	return &prop, nil
}

// Get retrieves a property by ID, preloading inspections (with issues),
// documents, and photos.
func Get(gdb *gorm.DB, id string) (*models.Property, error) {
	var prop models.Property
	err := gdb.
		Preload("Inspections", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("scheduled_at ASC")
		}).
		Preload("Inspections.Issues").
		Preload("Documents").
		Preload("Photos").
		Where("id = ?", id).First(&prop).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("property: not found: %s", id)
		}
		return nil, fmt.Errorf("property: get %s: %w", id, err)
	}
	return &prop, nil
}

// List returns properties matching the given filters, ordered by community
// then address.
func List(gdb *gorm.DB, filters ListFilters) ([]models.Property, error) {
	q := gdb.Model(&models.Property{})

	if filters.Community != "" {
		q = q.Where("community = ?", filters.Community)
	}
	if filters.Stage != "" {
		q = q.Where("stage = ?", filters.Stage)
	}
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	if filters.BuilderID != "" {
		q = q.Where("builder_id = ?", filters.BuilderID)
	}

	var props []models.Property
	if err := q.Order("community ASC, address ASC").Find(&props).Error; err != nil {
		return nil, fmt.Errorf("property: list: %w", err)
	}
	return props, nil
}

// Update modifies property contact/notes fields. Stage and status are owned
// by the state machine and cannot be set directly.
func Update(gdb *gorm.DB, id string, updates map[string]interface{}) error {
	for _, key := range []string{"stage", "status"} {
		if _, ok := updates[key]; ok {
			return fmt.Errorf("property: %s is derived from inspections and cannot be set directly: %w", key, ErrValidation)
		}
	}

	var count int64
	if err := gdb.Model(&models.Property{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("property: check %s: %w", id, err)
	}
	if count == 0 {
		return fmt.Errorf("property: not found: %s", id)
	}

	if err := gdb.Model(&models.Property{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("property: update %s: %w", id, err)
	}
	return nil
}

// StageSummary returns property counts grouped by stage.
func StageSummary(gdb *gorm.DB) ([]StageCount, error) {
	var results []StageCount
	if err := gdb.Model(&models.Property{}).
		Select("stage, COUNT(*) as count").
		Group("stage").
		Order("stage ASC").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("property: stage summary: %w", err)
	}
	return results, nil
}

// Apply runs an inspection event through the stage machine and persists the
// resulting stage/status. It returns the property as it was before the event
// and as it is after, for activity recording. Callers run it inside the same
// transaction that mutates the inspection.
func Apply(tx *gorm.DB, propertyID string, event Event, insType string) (before, after *models.Property, err error) {
	var prop models.Property
	if err := tx.Where("id = ?", propertyID).First(&prop).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("property: not found: %s", propertyID)
		}
		return nil, nil, fmt.Errorf("property: get %s: %w", propertyID, err)
	}

	prev := prop
	newStage, newStatus, err := Progress(prop.Stage, prop.Status, event, insType)
	if err != nil {
		return nil, nil, err
	}

	if newStage == prop.Stage && newStatus == prop.Status {
		return &prev, &prop, nil
	}

	if err := tx.Model(&models.Property{}).Where("id = ?", propertyID).
		Updates(map[string]interface{}{"stage": newStage, "status": newStatus}).Error; err != nil {
		return nil, nil, fmt.Errorf("property: apply %s to %s: %w", event, propertyID, err)
	}
	prop.Stage = newStage
	prop.Status = newStatus
	return &prev, &prop, nil
}

// AddDocument attaches document metadata to a property. The file itself lives
// in external storage; only the URL is recorded here.
func AddDocument(gdb *gorm.DB, propertyID, name, kind, url, uploadedBy string) (*models.Document, error) {
	if name == "" || url == "" {
		return nil, fmt.Errorf("property: document name and url are required: %w", ErrValidation)
	}
	var count int64
	if err := gdb.Model(&models.Property{}).Where("id = ?", propertyID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("property: check %s: %w", propertyID, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("property: not found: %s", propertyID)
	}

	doc := models.Document{
		PropertyID: propertyID,
		Name:       name,
		Kind:       kind,
		URL:        url,
		UploadedBy: uploadedBy,
	}
	if doc.Kind == "" {
		doc.Kind = "report"
	}
	if err := gdb.Create(&doc).Error; err != nil {
		return nil, fmt.Errorf("property: add document to %s: %w", propertyID, err)
	}
	return &doc, nil
}

// AddPhoto attaches photo metadata to a property.
func AddPhoto(gdb *gorm.DB, propertyID, url, caption string) (*models.Photo, error) {
	if url == "" {
		return nil, fmt.Errorf("property: photo url is required: %w", ErrValidation)
	}
	var count int64
	if err := gdb.Model(&models.Property{}).Where("id = ?", propertyID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("property: check %s: %w", propertyID, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("property: not found: %s", propertyID)
	}

	photo := models.Photo{PropertyID: propertyID, URL: url, Caption: caption}
	if err := gdb.Create(&photo).Error; err != nil {
		return nil, fmt.Errorf("property: add photo to %s: %w", propertyID, err)
	}
	return &photo, nil
}

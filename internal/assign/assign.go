// Package assign matches unassigned scheduled inspections with active
// inspectors who cover the property's community.
package assign

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/systemhause/hause/internal/models"
	"gorm.io/gorm"
)

// Assignment pairs one inspection with the inspector chosen for it.
type Assignment struct {
	InspectionID string
	Inspector    string
}

// Claim atomically assigns an inspector to one scheduled, unassigned
// inspection. A guarded update ensures each inspection is claimed exactly
// once, even when two dispatchers run concurrently.
func Claim(gdb *gorm.DB, inspectionID string, inspector *models.Inspector) error {
	if inspectionID == "" {
		return fmt.Errorf("assign: inspection ID is required")
	}
	if inspector == nil || !inspector.Active {
		return fmt.Errorf("assign: an active inspector is required")
	}

	return gdb.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Inspection{}).
			Where("id = ? AND status = ? AND inspector_name = ?", inspectionID, "scheduled", "").
			Updates(map[string]interface{}{
				"inspector_name":  inspector.Name,
				"inspector_phone": inspector.Phone,
				"inspector_email": inspector.Email,
				"updated_at":      time.Now(),
			})
		if result.Error != nil {
			return fmt.Errorf("assign: claim %s: %w", inspectionID, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("assign: inspection %s is not claimable: %w", inspectionID, gorm.ErrRecordNotFound)
		}
		return nil
	})
}

// AutoAssign finds every scheduled inspection without an inspector and claims
// each for the active inspector covering the property's community with the
// fewest open inspections. Inspections in communities no inspector covers are
// skipped. Returns the assignments made.
func AutoAssign(gdb *gorm.DB) ([]Assignment, error) {
	var inspectors []models.Inspector
	if err := gdb.Where("active = ?", true).Order("name ASC").Find(&inspectors).Error; err != nil {
		return nil, fmt.Errorf("assign: list inspectors: %w", err)
	}
	if len(inspectors) == 0 {
		return nil, nil
	}

	coverage := make(map[string][]*models.Inspector)
	for i := range inspectors {
		areas, err := serviceAreas(&inspectors[i])
		if err != nil {
			return nil, err
		}
		for _, area := range areas {
			coverage[area] = append(coverage[area], &inspectors[i])
		}
	}

	load := make(map[string]int64, len(inspectors))
	for i := range inspectors {
		var n int64
		if err := gdb.Model(&models.Inspection{}).
			Where("inspector_name = ? AND status IN ?", inspectors[i].Name, []string{"scheduled", "in-progress"}).
			Count(&n).Error; err != nil {
			return nil, fmt.Errorf("assign: count load for %s: %w", inspectors[i].Name, err)
		}
		load[inspectors[i].Name] = n
	}

	var pending []models.Inspection
	if err := gdb.Where("status = ? AND inspector_name = ?", "scheduled", "").
		Order("scheduled_at ASC").Find(&pending).Error; err != nil {
		return nil, fmt.Errorf("assign: list unassigned: %w", err)
	}

	var made []Assignment
	for _, ins := range pending {
		var prop models.Property
		if err := gdb.Where("id = ?", ins.PropertyID).First(&prop).Error; err != nil {
			return made, fmt.Errorf("assign: get property %s: %w", ins.PropertyID, err)
		}

		candidates := coverage[prop.Community]
		if len(candidates) == 0 {
			continue
		}

		chosen := candidates[0]
		for _, c := range candidates[1:] {
			if load[c.Name] < load[chosen.Name] {
				chosen = c
			}
		}

		if err := Claim(gdb, ins.ID, chosen); err != nil {
			// Someone else claimed it between the list and the update.
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return made, err
		}
		load[chosen.Name]++
		made = append(made, Assignment{InspectionID: ins.ID, Inspector: chosen.Name})
	}
	return made, nil
}

// serviceAreas decodes the inspector's JSON community list.
func serviceAreas(inspector *models.Inspector) ([]string, error) {
	if inspector.ServiceAreas == "" {
		return nil, nil
	}
	var areas []string
	if err := json.Unmarshal([]byte(inspector.ServiceAreas), &areas); err != nil {
		return nil, fmt.Errorf("assign: decode service areas for %s: %w", inspector.Name, err)
	}
	return areas, nil
}

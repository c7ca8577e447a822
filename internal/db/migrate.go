package db

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/systemhause/hause/internal/config"
	"github.com/systemhause/hause/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.Property{},
		&models.Document{},
		&models.Photo{},
		&models.Inspection{},
		&models.Issue{},
		&models.CorrectionRequest{},
		&models.Inspector{},
		&models.Builder{},
		&models.Activity{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// SeedInspectors upserts Inspector rows from configuration, keyed by name.
func SeedInspectors(db *gorm.DB, inspectors []config.InspectorConfig) error {
	for _, ic := range inspectors {
		areas, err := marshalJSON(ic.ServiceAreas)
		if err != nil {
			return fmt.Errorf("db: marshal service_areas for inspector %q: %w", ic.Name, err)
		}

		id, err := GenerateID("ins")
		if err != nil {
			return err
		}
		row := models.Inspector{
			ID:           id,
			Name:         ic.Name,
			Phone:        ic.Phone,
			Email:        ic.Email,
			ServiceAreas: areas,
			Active:       true,
		}

		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"phone", "email", "service_areas", "active"}),
		}).Create(&row)
		if result.Error != nil {
			return fmt.Errorf("db: seed inspector %q: %w", ic.Name, result.Error)
		}
	}
	return nil
}

// SeedBuilders upserts Builder rows from configuration, keyed by name.
func SeedBuilders(db *gorm.DB, builders []config.BuilderConfig) error {
	for _, bc := range builders {
		communities, err := marshalJSON(bc.Communities)
		if err != nil {
			return fmt.Errorf("db: marshal communities for builder %q: %w", bc.Name, err)
		}

		id, err := GenerateID("bld")
		if err != nil {
			return err
		}
		row := models.Builder{
			ID:          id,
			Name:        bc.Name,
			Company:     bc.Company,
			Phone:       bc.Phone,
			Email:       bc.Email,
			Communities: communities,
			Active:      true,
		}

		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"company", "phone", "email", "communities", "active"}),
		}).Create(&row)
		if result.Error != nil {
			return fmt.Errorf("db: seed builder %q: %w", bc.Name, result.Error)
		}
	}
	return nil
}

// GenerateID creates a unique record ID in prefix-xxxxx format (5-char hex).
func GenerateID(prefix string) (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("db: generate ID: %w", err)
	}
	return prefix + "-" + hex.EncodeToString(b)[:5], nil
}

// marshalJSON marshals a value to a JSON string, returning empty string for nil.
func marshalJSON(v interface{}) (string, error) {
	if v == nil {
		return "", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
